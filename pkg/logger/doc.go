// Package logger builds *slog.Logger instances with consistent defaults and
// attribute names.
//
// New creates a JSON or text handler and wraps it in LogHandlerDecorator,
// which injects attributes pulled from context.Context on every record. The
// helpers in attr.go keep keys such as "error", "component" and "count" the
// same everywhere.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "recoveryctl"),
//	    logger.WithContextExtractors(environment.LoggerExtractor()),
//	)
//
//	log.InfoContext(ctx, "cleaned expired recovery keys",
//	    logger.Component("sweeper"),
//	    logger.Count(3),
//	)
//
// Never pass a plaintext recovery key to a logger. Tokens are not secret and
// may be logged with Token.
package logger
