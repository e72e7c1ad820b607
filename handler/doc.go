// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value populated by binders
// and returns a Response. Errors from binding, from handlers returning
// Error(err), and from rendering go to an ErrorHandler; ErrorResponder is the
// standard one, translating errors through an ErrorMapper into the JSON
// envelope {data, meta, error{code, message, details}}.
//
//	mapper := handler.NewErrorMapper(
//		handler.Map(subscription.ErrSubscriptionNotFound, handler.ErrNotFound),
//	)
//	responder := handler.NewErrorResponder(log, mapper)
//	r.Get("/things/{id}", handler.Wrap(getThing,
//		handler.WithBinders(binder.Path(chi.URLParam)),
//		handler.WithErrorHandler(responder.Handle),
//	))
package handler
