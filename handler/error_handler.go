package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/requestid"
)

// ErrorResponder renders errors as JSON envelopes and logs them: client
// errors at Warn, server errors at Error.
type ErrorResponder struct {
	log    *slog.Logger
	mapper *ErrorMapper
}

func NewErrorResponder(log *slog.Logger, mapper *ErrorMapper) *ErrorResponder {
	if log == nil {
		log = logger.Discard()
	}
	if mapper == nil {
		mapper = NewErrorMapper()
	}
	return &ErrorResponder{log: log, mapper: mapper}
}

// Handle satisfies ErrorHandler.
func (e *ErrorResponder) Handle(ctx Context, err error) {
	e.Respond(ctx.ResponseWriter(), ctx.Request(), err)
}

// Respond fits middleware error hooks that work on the raw writer.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	herr, detail := e.mapper.Map(err)

	level := slog.LevelWarn
	if herr.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.log.LogAttrs(r.Context(), level, "request error",
		logger.RequestID(requestid.FromContext(r.Context())),
		logger.Error(err),
		slog.Int("status_code", herr.Code),
		slog.String("error_code", herr.Key),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("http"),
	)

	if rerr := JSONError(detail, WithStatus(herr.Code)).Render(w, r); rerr != nil {
		e.log.ErrorContext(r.Context(), "failed to render error response", logger.Error(rerr))
	}
}

// NotFound answers unmatched routes.
func (e *ErrorResponder) NotFound(w http.ResponseWriter, r *http.Request) {
	e.Respond(w, r, ErrNotFound)
}

func (e *ErrorResponder) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	e.Respond(w, r, ErrMethodNotAllowed)
}
