package domain

// Experiment statuses.
const (
	ExperimentRunning  = "running"
	ExperimentFinished = "finished"
	ExperimentFailed   = "failed"
)

// Experiment is one entry in the experiment tracker.
type Experiment struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Project   string `json:"project"`
	Status    string `json:"status"`
	Metric    string `json:"metric,omitempty"`
	Notes     string `json:"notes,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (e Experiment) RecordID() string { return e.ID }

// WithID returns a copy of the experiment carrying the given identifier.
func (e Experiment) WithID(id string) Experiment {
	e.ID = id
	return e
}

// Validate checks required fields before the experiment touches the store.
func (e Experiment) Validate() error {
	if e.Title == "" {
		return invalid("title", "must not be empty")
	}
	switch e.Status {
	case ExperimentRunning, ExperimentFinished, ExperimentFailed:
	default:
		return invalid("status", "must be running, finished or failed")
	}
	return nil
}

// Paper statuses.
const (
	PaperToRead  = "to_read"
	PaperReading = "reading"
	PaperRead    = "read"
)

// Paper is one entry on the reading list.
type Paper struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	DOI    string `json:"doi,omitempty"`
	Venue  string `json:"venue,omitempty"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (p Paper) RecordID() string { return p.ID }

// WithID returns a copy of the paper carrying the given identifier.
func (p Paper) WithID(id string) Paper {
	p.ID = id
	return p
}

// Validate checks required fields before the paper touches the store.
func (p Paper) Validate() error {
	if p.Title == "" {
		return invalid("title", "must not be empty")
	}
	switch p.Status {
	case PaperToRead, PaperReading, PaperRead:
	default:
		return invalid("status", "must be to_read, reading or read")
	}
	return nil
}
