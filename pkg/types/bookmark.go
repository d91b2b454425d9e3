package types

// Bookmark is a marker span found in the log text.
// Ordinal is the number written in the marker, not the bookmark's position.
type Bookmark struct {
	Start   int `json:"start"`
	End     int `json:"end"`
	Ordinal int `json:"ordinal"`
}

// Contains reports whether offset lies on the marker, including its end boundary.
func (b Bookmark) Contains(offset int) bool {
	return b.Start <= offset && offset <= b.End
}
