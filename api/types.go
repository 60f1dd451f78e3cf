package api

import (
	"context"

	"github.com/zestyzy/CampusStudyHub/calendar"
	"github.com/zestyzy/CampusStudyHub/config"
	"github.com/zestyzy/CampusStudyHub/domain"
	"github.com/zestyzy/CampusStudyHub/lan"
)

// Collection abstracts persistence for one domain's records.
type Collection[T domain.Record] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
}

// Collections bundles every store the API serves.
type Collections struct {
	Tasks       Collection[domain.Task]
	Conferences Collection[domain.Conference]
	Grades      Collection[domain.GradeRow]
	Experiments Collection[domain.Experiment]
	Papers      Collection[domain.Paper]
}

// Settings loads and saves the process-wide configuration.
type Settings interface {
	Load() (config.Config, error)
	Save(config.Config) error
}

// Notifier sends reminder datagrams to LAN peers.
type Notifier interface {
	Broadcast(ctx context.Context, peers []lan.Peer, message string) []lan.Result
}

// CalendarExporter pushes deadlines to an external calendar. Optional; a nil
// exporter disables the route.
type CalendarExporter interface {
	Export(ctx context.Context, deadlines []calendar.Deadline) error
}

// Authenticator validates the Authorization header.
type Authenticator interface {
	UserFromAuthHeader(string) (string, error)
}

// record is the constraint for collection routes: a persistable record that
// can validate itself and be re-issued with a server-assigned identifier.
type record[T any] interface {
	domain.Record
	Validate() error
	WithID(string) T
}
