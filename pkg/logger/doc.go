// Package logger builds configured log/slog loggers: JSON or text output,
// environment presets, static attributes, and context extractors that pull
// request-scoped values (request IDs, user IDs) into every record.
//
//	log := logger.New(
//		logger.WithProduction("billingkit"),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
package logger
