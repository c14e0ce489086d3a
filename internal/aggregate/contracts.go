package aggregate

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/liftcare/internal/model"
)

const ExpiringWindowDays = 30

var monthsPerYear = decimal.NewFromInt(12)

func isActive(c model.Contract) bool {
	return c.Status == model.ContractActive
}

// ExpiringSoon reports whether an active contract ends within [today, today+window days].
func ExpiringSoon(c model.Contract, now time.Time, window int) bool {
	if !isActive(c) {
		return false
	}
	today := dateOnly(now)
	end := dateOnly(c.EndDate)
	return !end.Before(today) && !end.After(today.AddDate(0, 0, window))
}

// ContractSummary computes the admin contract panel. Monthly revenue amortizes
// every active contract over twelve months.
func ContractSummary(contracts []model.Contract, now time.Time) model.ContractSummary {
	amount := func(c model.Contract) decimal.Decimal { return c.TotalAmount }
	total := SumDecimal(contracts, isActive, amount)

	return model.ContractSummary{
		ActiveContracts: Count(contracts, isActive),
		TotalValue:      total,
		ExpiringSoon: Count(contracts, func(c model.Contract) bool {
			return ExpiringSoon(c, now, ExpiringWindowDays)
		}),
		PendingRenewal: Count(contracts, func(c model.Contract) bool {
			return c.Status == model.ContractPending
		}),
		MonthlyRevenue: SumDecimal(contracts, isActive, func(c model.Contract) decimal.Decimal {
			return c.TotalAmount.Div(monthsPerYear)
		}),
	}
}

// ExpiringContracts lists active contracts ending inside the window, soonest first.
// Customer names come from the preloaded association when present.
func ExpiringContracts(contracts []model.Contract, now time.Time, window, limit int) []model.ExpiringContract {
	expiring := Filter(contracts, func(c model.Contract) bool {
		return ExpiringSoon(c, now, window)
	})
	sortBy(expiring, func(a, b model.Contract) bool { return a.EndDate.Before(b.EndDate) })
	if limit > 0 && len(expiring) > limit {
		expiring = expiring[:limit]
	}

	out := make([]model.ExpiringContract, 0, len(expiring))
	for _, c := range expiring {
		name := ""
		if c.Customer != nil {
			name = c.Customer.Name
		}
		out = append(out, model.ExpiringContract{
			ID:             c.ID,
			ContractNumber: c.ContractNumber,
			Customer:       name,
			Expiry:         c.EndDate,
			DaysLeft:       DaysLeft(c.EndDate, now),
		})
	}
	return out
}

// DaysLeft rounds the remaining time up to whole days.
func DaysLeft(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
