package port

// ReportCache holds computed statements and reports. Keys have the form
// "<kind>/<year>/<discriminator>" so that entries can be dropped by year.
type ReportCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// InvalidateFrom drops every entry for year and later years and returns
	// the number of dropped entries.
	InvalidateFrom(year int) int
}
