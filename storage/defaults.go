package storage

import (
	"context"

	"github.com/zestyzy/CampusStudyHub/domain"
)

// DefaultConferences returns the built-in seed list of conference deadlines
// written on first run, before the user has added any of their own.
func DefaultConferences() []domain.Conference {
	seeds := []domain.Conference{
		{Name: "AAAI", Category: "CCF-A", SubmissionDeadline: "2025-08-15", Location: "North America", URL: "https://aaai.org", Note: "AI flagship"},
		{Name: "CVPR", Category: "CCF-A", SubmissionDeadline: "2025-11-15", Location: "International", URL: "https://cvpr.thecvf.com", Note: "Computer vision"},
		{Name: "ICML", Category: "CCF-A", SubmissionDeadline: "2025-01-20", Location: "International", URL: "https://icml.cc", Note: "Machine learning"},
		{Name: "SIGIR", Category: "CCF-A", SubmissionDeadline: "2025-02-01", Location: "International", URL: "https://sigir.org", Note: "Information retrieval"},
		{Name: "IJCAI", Category: "CCF-A", SubmissionDeadline: "2025-01-10", Location: "International", URL: "https://ijcai.org", Note: "AI conference"},
	}
	for i := range seeds {
		seeds[i].ID = domain.NewID()
		seeds[i].RemindBeforeDays = domain.DefaultRemindBeforeDays
		seeds[i].Source = domain.SourceLocal
	}
	return seeds
}

// SeedConferences writes the default conference list if the collection file
// does not exist yet. An existing but empty collection is left alone: the
// user may have deleted every entry on purpose.
func SeedConferences(ctx context.Context, col *Collection[domain.Conference]) ([]domain.Conference, error) {
	if col.Exists() {
		return col.Load(ctx)
	}
	defaults := DefaultConferences()
	if err := col.Save(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
