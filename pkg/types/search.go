package types

// SearchType selects how a search term is interpreted.
type SearchType int

const (
	Normal SearchType = iota
	RegularExpression
)

// searchTypes lists every SearchType in ordinal order.
var searchTypes = []struct {
	name  string
	label string
}{
	Normal:            {name: "NORMAL", label: "normal"},
	RegularExpression: {name: "REGULAR_EXPRESSION", label: "regular expression"},
}

// Name returns the persisted name of the type ("NORMAL", "REGULAR_EXPRESSION").
func (t SearchType) Name() string {
	if t < 0 || int(t) >= len(searchTypes) {
		return searchTypes[Normal].name
	}
	return searchTypes[t].name
}

// Label returns the human readable label of the type.
func (t SearchType) Label() string {
	if t < 0 || int(t) >= len(searchTypes) {
		return searchTypes[Normal].label
	}
	return searchTypes[t].label
}

func (t SearchType) String() string { return t.Name() }

// SearchTypeByIndex returns the type at ordinal index, or Normal when out of range.
func SearchTypeByIndex(index int) SearchType {
	if index < 0 || index >= len(searchTypes) {
		return Normal
	}
	return SearchType(index)
}

// SearchTypeIndexByName returns the ordinal of the named type, or 0 when unknown.
func SearchTypeIndexByName(name string) int {
	if t, ok := LookupSearchType(name); ok {
		return int(t)
	}
	return 0
}

// LookupSearchType returns the type with the given persisted name and whether
// the name is known.
func LookupSearchType(name string) (SearchType, bool) {
	for i, st := range searchTypes {
		if st.name == name {
			return SearchType(i), true
		}
	}
	return Normal, false
}

// SearchTypeByName returns the named type, or Normal when unknown.
func SearchTypeByName(name string) SearchType {
	return SearchType(SearchTypeIndexByName(name))
}

// SearchTypeLabels returns the labels of all types in ordinal order.
func SearchTypeLabels() []string {
	labels := make([]string, len(searchTypes))
	for i, st := range searchTypes {
		labels[i] = st.label
	}
	return labels
}

// SearchQuery is a search term plus the options it is evaluated with.
type SearchQuery struct {
	Term          string
	CaseSensitive bool
	Wrap          bool
	Type          SearchType
}

// SameSearch reports whether two queries produce the same match list.
// Wrap only affects navigation and is ignored.
func (q SearchQuery) SameSearch(other SearchQuery) bool {
	return q.Term == other.Term &&
		q.CaseSensitive == other.CaseSensitive &&
		q.Type == other.Type
}

// Match is a half-open [Start, End) span of rune offsets into a text snapshot.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether offset lies inside the span.
func (m Match) Contains(offset int) bool {
	return m.Start <= offset && offset < m.End
}
