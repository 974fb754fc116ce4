// Package logging builds the application's slog loggers and centralizes
// structured field naming so components log consistently.
package logging
