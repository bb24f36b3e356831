package marker

// Filter finds structural noise in raw text and describes it with markers.
// Positions in the result are relative to text. Implementations must be
// stateless with respect to earlier calls.
type Filter interface {
	Scan(text string) []Marker
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(text string) []Marker

// Scan calls f(text).
func (f FilterFunc) Scan(text string) []Marker { return f(text) }

// Scan runs every filter over text and returns the union of their markers
// in application order.
func Scan(text string, filters ...Filter) []Marker {
	var all []Marker
	for _, f := range filters {
		if f == nil {
			continue
		}
		all = append(all, f.Scan(text)...)
	}
	if len(all) == 0 {
		return nil
	}
	return Sort(all)
}
