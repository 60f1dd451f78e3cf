package domain

import "time"

// DefaultRemindBeforeDays is applied to conferences written by older client
// versions that did not persist a per-record reminder lead time.
const DefaultRemindBeforeDays = 7

// SourceLocal marks conference entries created by the user rather than
// imported from an external deadline feed.
const SourceLocal = "local"

// Conference tracks a submission deadline worth reminding about.
type Conference struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	SubmissionDeadline string `json:"submission_deadline"`
	Location           string `json:"location,omitempty"`
	URL                string `json:"url,omitempty"`
	Note               string `json:"note,omitempty"`
	Starred            bool   `json:"starred"`
	RemindBeforeDays   int    `json:"remind_before_days"`
	Source             string `json:"source"`
}

func (c Conference) RecordID() string { return c.ID }

// WithID returns a copy of the conference carrying the given identifier.
func (c Conference) WithID(id string) Conference {
	c.ID = id
	return c
}

func (c Conference) Due() (time.Time, bool) { return parseDate(c.SubmissionDeadline) }

// Terminal is always false: a conference has no done state, a passed
// deadline simply classifies as overdue.
func (c Conference) Terminal() bool { return false }

// Validate checks required fields before the conference touches the store.
func (c Conference) Validate() error {
	if c.Name == "" {
		return invalid("name", "must not be empty")
	}
	if _, ok := parseDate(c.SubmissionDeadline); !ok {
		return invalid("submission_deadline", "must be a date in the form "+DateLayout)
	}
	if c.RemindBeforeDays < 0 {
		return invalid("remind_before_days", "must not be negative")
	}
	return nil
}

// NormalizeConferences fills fields missing from entries persisted by older
// versions so callers never see zero lead times or an empty source tag.
func NormalizeConferences(conferences []Conference) []Conference {
	out := make([]Conference, len(conferences))
	for i, c := range conferences {
		if c.RemindBeforeDays == 0 {
			c.RemindBeforeDays = DefaultRemindBeforeDays
		}
		if c.Source == "" {
			c.Source = SourceLocal
		}
		out[i] = c
	}
	return out
}
