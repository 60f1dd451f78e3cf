package domain

// GradeRow is one course entry on the GPA sheet.
type GradeRow struct {
	ID     string  `json:"id"`
	Course string  `json:"course"`
	Credit float64 `json:"credit"`
	Score  float64 `json:"score"`
}

func (g GradeRow) RecordID() string { return g.ID }

// WithID returns a copy of the row carrying the given identifier.
func (g GradeRow) WithID(id string) GradeRow {
	g.ID = id
	return g
}

// Validate checks required fields before the row touches the store.
func (g GradeRow) Validate() error {
	if g.Course == "" {
		return invalid("course", "must not be empty")
	}
	if g.Credit <= 0 {
		return invalid("credit", "must be greater than zero")
	}
	if g.Score < 0 || g.Score > 100 {
		return invalid("score", "must be between 0 and 100")
	}
	return nil
}
