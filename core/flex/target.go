package flex

// InsertTarget accumulates the rows one directive selected. Units and
// Comments always have the same length.
type InsertTarget struct {
	Line          int
	Units         []string
	Comments      []string
	LimitExceeded bool
}

// Add appends a unit and its comment. An empty comment keeps its slot.
func (t *InsertTarget) Add(unit, comment string) {
	t.Units = append(t.Units, unit)
	t.Comments = append(t.Comments, comment)
}

// Len returns the number of accepted units.
func (t *InsertTarget) Len() int {
	return len(t.Units)
}

// CommentBlock returns the comments one per line, each newline-terminated.
func (t *InsertTarget) CommentBlock() string {
	var b []byte
	for _, c := range t.Comments {
		b = append(b, c...)
		b = append(b, '\n')
	}
	return string(b)
}
