package modules

import (
	"net/http"

	"github.com/dmitrymomot/planmeter/handler"
	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/jwt"
	"github.com/dmitrymomot/planmeter/pkg/ratelimiter"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

// ErrAlreadySubscribed is the client error for a duplicate active subscription.
var ErrAlreadySubscribed = handler.NewHTTPError(http.StatusBadRequest, "subscription_already_active")

// ErrorMapper translates domain errors into HTTP errors. Storage failures are
// not mapped and fall through to the generic internal error.
func ErrorMapper() *handler.ErrorMapper {
	return handler.NewErrorMapper(
		handler.Map(access.ErrUnauthenticated, handler.ErrUnauthorized),
		handler.Map(access.ErrForbidden, handler.ErrForbidden),
		handler.Map(jwt.ErrMissingToken, handler.ErrUnauthorized),
		handler.Map(jwt.ErrInvalidToken, handler.ErrUnauthorized),
		handler.Map(jwt.ErrExpiredToken, handler.ErrUnauthorized),
		handler.Map(jwt.ErrInvalidSignature, handler.ErrUnauthorized),
		handler.Map(jwt.ErrUnexpectedSigningMethod, handler.ErrUnauthorized),
		handler.Map(jwt.ErrInvalidClaims, handler.ErrUnauthorized),
		handler.Map(jwt.ErrMissingClaims, handler.ErrUnauthorized),

		handler.Map(ratelimiter.ErrLimitExceeded, handler.ErrTooManyRequests),

		handler.Map(subscription.ErrPlanNotFound, handler.ErrNotFound),
		handler.Map(subscription.ErrSubscriptionNotFound, handler.ErrNotFound),
		handler.Map(catalog.ErrPlanNotFound, handler.ErrNotFound),
		handler.Map(subscription.ErrAlreadySubscribed, ErrAlreadySubscribed),
		handler.Map(subscription.ErrInvalidSubscriptionState, handler.ErrConflict),
		handler.Map(catalog.ErrPlanNameTaken, handler.ErrConflict),
		handler.Map(catalog.ErrPlanInUse, handler.ErrConflict),
		handler.Map(subscription.ErrInvalidUsage, handler.ErrValidation),
		handler.Map(subscription.ErrInvalidFilter, handler.ErrValidation),
		handler.Map(subscription.ErrInvalidUpdate, handler.ErrValidation),
		handler.Map(catalog.ErrInvalidPlan, handler.ErrValidation),
	)
}
