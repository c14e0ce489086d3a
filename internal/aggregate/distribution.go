package aggregate

import "github.com/nurpe/liftcare/internal/model"

var elevatorStatusSlices = []struct {
	status model.ElevatorStatus
	name   string
	color  string
}{
	{model.ElevatorOperational, "Operational", "#9333EA"},
	{model.ElevatorMaintenance, "Under Maintenance", "#A855F7"},
	{model.ElevatorOutOfService, "Out of Service", "#C084FC"},
}

// ElevatorStatusDistribution counts elevators per status. Unknown statuses are ignored.
func ElevatorStatusDistribution(statuses []model.ElevatorStatus) []model.StatusSlice {
	out := make([]model.StatusSlice, 0, len(elevatorStatusSlices))
	for _, s := range elevatorStatusSlices {
		out = append(out, model.StatusSlice{
			Name:  s.name,
			Value: Count(statuses, func(v model.ElevatorStatus) bool { return v == s.status }),
			Color: s.color,
		})
	}
	return out
}

var satisfactionBuckets = []struct {
	name  string
	color string
	match func(int) bool
}{
	{"Very Satisfied", "#9333EA", func(r int) bool { return r == 5 }},
	{"Satisfied", "#A855F7", func(r int) bool { return r == 4 }},
	{"Neutral", "#C084FC", func(r int) bool { return r == 3 }},
	{"Dissatisfied", "#E9D5FF", func(r int) bool { return r <= 2 }},
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// SatisfactionDistribution turns 1-5 ratings into four buckets expressed as
// integer percentages of the valid ratings. All values are 0 when there are none.
func SatisfactionDistribution(ratings []int) []model.StatusSlice {
	valid := Filter(ratings, validRating)
	out := make([]model.StatusSlice, 0, len(satisfactionBuckets))
	for _, b := range satisfactionBuckets {
		out = append(out, model.StatusSlice{
			Name:  b.name,
			Value: Percent(Count(valid, b.match), len(valid)),
			Color: b.color,
		})
	}
	return out
}
