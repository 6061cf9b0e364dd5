// Package logging provides slog-based structured logging for the credit
// identification pipeline. It offers a console handler for interactive runs,
// a JSON handler for machine consumption, standardized attribute helpers, and
// component-scoped loggers so every record carries its originating subsystem.
package logging
