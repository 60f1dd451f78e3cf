package domain

import "time"

// Classification partitions record identifiers by reminder state. Terminal
// records appear in none of the three sets.
type Classification struct {
	Overdue  []string `json:"overdue"`
	Upcoming []string `json:"upcoming"`
	Normal   []string `json:"normal"`
}

// Classify evaluates every record against the reminder window. A record is
// overdue when its due date lies strictly before now, upcoming when it falls
// within [now, now+windowDays] inclusive, and normal otherwise. Dates compare
// at day granularity, so a record due today is upcoming, not overdue. Records
// without a parseable due date are normal.
//
// The evaluation is pure and must be re-run on every read: now advances
// continuously and the result is never cached per record.
func Classify[T Deadline](records []T, windowDays int, now time.Time) Classification {
	cl := Classification{
		Overdue:  []string{},
		Upcoming: []string{},
		Normal:   []string{},
	}
	today := dateOnly(now)
	horizon := today.AddDate(0, 0, windowDays)
	for _, rec := range records {
		if rec.Terminal() {
			continue
		}
		due, ok := rec.Due()
		if !ok {
			cl.Normal = append(cl.Normal, rec.RecordID())
			continue
		}
		due = dateOnly(due)
		switch {
		case due.Before(today):
			cl.Overdue = append(cl.Overdue, rec.RecordID())
		case !due.After(horizon):
			cl.Upcoming = append(cl.Upcoming, rec.RecordID())
		default:
			cl.Normal = append(cl.Normal, rec.RecordID())
		}
	}
	return cl
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
