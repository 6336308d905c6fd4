// Package logging provides slog construction and attribute helpers shared by
// every component. Loggers write text or JSON to stderr and optionally fan
// out to a log file; components attach a standard "component" attribute via
// NewComponentLogger so records are filterable by origin.
package logging
