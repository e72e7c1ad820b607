package validator

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Required fails when value is empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required", Code: "required"},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len([]rune(value)) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
			Code:    "max_length",
		},
	}
}

// Min validates value >= min.
func Min[T Numeric](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %v", min),
			Code:    "min",
		},
	}
}

// Positive validates value > 0.
func Positive[T Numeric](field string, value T) Rule {
	var zero T
	return Rule{
		Check: func() bool { return value > zero },
		Error: ValidationError{Field: field, Message: "must be greater than 0", Code: "positive"},
	}
}

// NoBlankItems fails when any element of the slice is blank.
func NoBlankItems(field string, values []string) Rule {
	return Rule{
		Check: func() bool {
			return !slices.ContainsFunc(values, func(v string) bool { return strings.TrimSpace(v) == "" })
		},
		Error: ValidationError{Field: field, Message: "must not contain blank items", Code: "blank_item"},
	}
}

// OneOf validates that value is one of the allowed values. Empty value passes.
func OneOf(field, value string, allowed ...string) Rule {
	return Rule{
		Check: func() bool { return value == "" || slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:   field,
			Message: "must be one of: " + strings.Join(allowed, ", "),
			Code:    "one_of",
		},
	}
}

// Finite rejects NaN and infinities.
func Finite(field string, value float64) Rule {
	return Rule{
		Check: func() bool { return !math.IsNaN(value) && !math.IsInf(value, 0) },
		Error: ValidationError{Field: field, Message: "must be a finite number", Code: "finite"},
	}
}
