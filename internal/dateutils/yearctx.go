package dateutils

// YearContext is the running state threaded through the processing of one
// file: the most recently resolved year, the open month key and the current
// header text. It must not be shared across files.
type YearContext struct {
	year     int
	monthKey string
	header   string
}

// NewYearContext returns a context seeded with year; 0 means "unknown".
func NewYearContext(seed int) *YearContext {
	return &YearContext{year: seed}
}

// Year returns the current implicit year.
func (c *YearContext) Year() (int, bool) {
	return c.year, c.year != 0
}

// Resolve returns the year a header refers to. An explicit year becomes the
// implicit year for later headers; an elided one is inherited. ok is false
// when the header has no year and none is known yet.
func (c *YearContext) Resolve(h Header) (year int, ok bool) {
	if h.HasYear() {
		c.year = h.Year
		return h.Year, true
	}
	return c.year, c.year != 0
}

// Peek is Resolve without updating the implicit year.
func (c *YearContext) Peek(h Header) (int, bool) {
	if h.HasYear() {
		return h.Year, true
	}
	return c.year, c.year != 0
}

// SetMonth records the open YYYY-MM key.
func (c *YearContext) SetMonth(key string) { c.monthKey = key }

// Month returns the open YYYY-MM key, "" when no month is open.
func (c *YearContext) Month() string { return c.monthKey }

// SetHeader records the current normalised header text.
func (c *YearContext) SetHeader(header string) { c.header = header }

// Header returns the current header text, "" if none was seen.
func (c *YearContext) Header() string { return c.header }
