package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/planmeter/pkg/binder"
	"github.com/dmitrymomot/planmeter/pkg/validator"
)

// Mapping translates errors matching Target (errors.Is) into Err.
type Mapping struct {
	Target error
	Err    HTTPError
}

// Map is shorthand for building a Mapping.
func Map(target error, err HTTPError) Mapping {
	return Mapping{Target: target, Err: err}
}

// ErrorMapper classifies errors into HTTP errors and client-safe details.
type ErrorMapper struct {
	rules []Mapping
}

var bindingRules = []Mapping{
	Map(binder.ErrBodyTooLarge, ErrRequestTooLarge),
	Map(binder.ErrUnsupportedMediaType, ErrUnsupportedMediaType),
	Map(binder.ErrMissingContentType, ErrUnsupportedMediaType),
	Map(binder.ErrFailedToParseJSON, ErrBadRequest),
	Map(binder.ErrFailedToParseQuery, ErrBadRequest),
	Map(binder.ErrFailedToParsePath, ErrNotFound),
}

// NewErrorMapper checks rules in order, followed by request binding errors.
func NewErrorMapper(rules ...Mapping) *ErrorMapper {
	all := make([]Mapping, 0, len(rules)+len(bindingRules))
	all = append(all, rules...)
	all = append(all, bindingRules...)
	return &ErrorMapper{rules: all}
}

// Map resolves err. Explicit HTTPError values win, then the first matching
// rule, then validation errors; anything else is an internal error whose
// message never leaks the cause.
func (m *ErrorMapper) Map(err error) (HTTPError, ErrorDetail) {
	verrs := validator.ExtractValidationErrors(err)
	var details map[string]string
	if len(verrs) > 0 {
		details = verrs.Fields()
	}

	var herr HTTPError
	if errors.As(err, &herr) {
		return herr, ErrorDetail{Code: herr.Key, Message: statusMessage(herr.Code), Details: details}
	}

	for _, rule := range m.rules {
		if errors.Is(err, rule.Target) {
			msg := rule.Target.Error()
			if rule.Err.Code >= http.StatusInternalServerError {
				msg = statusMessage(rule.Err.Code)
			}
			return rule.Err, ErrorDetail{Code: rule.Err.Key, Message: msg, Details: details}
		}
	}

	if details != nil {
		return ErrValidation, ErrorDetail{Code: ErrValidation.Key, Message: "validation failed", Details: details}
	}

	return ErrInternal, ErrorDetail{Code: ErrInternal.Key, Message: statusMessage(ErrInternal.Code)}
}

func statusMessage(code int) string {
	if code >= http.StatusInternalServerError {
		return "an error occurred processing your request"
	}
	return http.StatusText(code)
}
