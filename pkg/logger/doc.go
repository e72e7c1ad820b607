// Package logger builds the service's *slog.Logger.
//
// New assembles a text or JSON handler from functional options and wraps it
// with NewLogHandlerDecorator, which runs registered ContextExtractor callbacks on
// every record. That is how request ids and caller ids reach log lines without
// threading loggers through every call.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "planmeter"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscription created",
//		logger.UserID(userID),
//		logger.SubscriptionID(sub.ID),
//	)
//
// Attribute helpers (Error, UserID, PlanID, ...) return an empty slog.Attr
// for zero input so callers can pass them unconditionally.
package logger
