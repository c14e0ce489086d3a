package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fieldKind int

const (
	textField fieldKind = iota
	intField
	decimalField
	dateField
	boolField
	uuidField
)

type fieldSpec struct {
	kind     fieldKind
	nullable bool
	required bool
	allowed  []string
}

// updateSchema lists the columns a partial update may touch.
type updateSchema map[string]fieldSpec

var protectedFields = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// build converts a decoded JSON partial into column updates. Unknown and
// protected keys are dropped. updated_at is always refreshed.
func (s updateSchema) build(partial map[string]interface{}, now time.Time) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(partial)+1)
	var bad []string
	for key, raw := range partial {
		if protectedFields[key] {
			continue
		}
		spec, ok := s[key]
		if !ok {
			continue
		}
		value, err := spec.convert(raw)
		if err != nil {
			bad = append(bad, key)
			continue
		}
		fields[key] = value
	}
	if len(bad) > 0 {
		sortStrings(bad)
		return nil, &ValidationError{Fields: bad}
	}
	fields["updated_at"] = now
	return fields, nil
}

func (f fieldSpec) convert(raw interface{}) (interface{}, error) {
	if raw == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("null not allowed")
	}
	switch f.kind {
	case textField:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string")
		}
		s = strings.TrimSpace(s)
		if f.required && s == "" {
			return nil, fmt.Errorf("empty")
		}
		if len(f.allowed) > 0 && !contains(f.allowed, s) {
			return nil, fmt.Errorf("value %q not allowed", s)
		}
		return s, nil
	case intField:
		switch v := raw.(type) {
		case float64:
			if v != math.Trunc(v) || v < 0 {
				return nil, fmt.Errorf("expected non-negative integer")
			}
			return int(v), nil
		case int:
			if v < 0 {
				return nil, fmt.Errorf("expected non-negative integer")
			}
			return v, nil
		}
		return nil, fmt.Errorf("expected integer")
	case decimalField:
		switch v := raw.(type) {
		case float64:
			return decimal.NewFromFloat(v), nil
		case string:
			return decimal.NewFromString(v)
		case decimal.Decimal:
			return v, nil
		}
		return nil, fmt.Errorf("expected number")
	case dateField:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string")
		}
		return parseDate(s)
	case boolField:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean")
		}
		return b, nil
	case uuidField:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected uuid string")
		}
		return uuid.Parse(s)
	}
	return nil, fmt.Errorf("unsupported field")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func sortStrings(values []string) {
	sort.Strings(values)
}
