// Package logger builds the process slog logger from server config and passes
// request loggers (carrying trace ids) through context.Context.
package logger
