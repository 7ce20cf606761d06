package holiday

// Holiday is a public holiday on a canonical YYYY-MM-DD date.
type Holiday struct {
	Date  string
	Label string
}

// Calendar answers holiday lookups by exact date match.
type Calendar struct {
	labels map[string]string
}

func NewCalendar(holidays []Holiday) Calendar {
	c := Calendar{labels: make(map[string]string, len(holidays))}
	for _, h := range holidays {
		c.labels[h.Date] = h.Label
	}
	return c
}

// Label returns the holiday name for date, if any.
func (c Calendar) Label(date string) (string, bool) {
	label, ok := c.labels[date]
	return label, ok
}
