// Package validator builds declarative, field-level validation.
//
// Each helper returns a Rule; Apply evaluates them all and aggregates the
// failures into ValidationErrors, which satisfies error and matches
// ErrValidationFailed with errors.Is:
//
//	err := validator.Apply(
//		validator.Required("name", p.Name),
//		validator.Min("price", p.Price, 0),
//		validator.Positive("dataQuotaGB", p.DataQuotaGB),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		details := verrs.Fields() // map[field]message
//	}
package validator
