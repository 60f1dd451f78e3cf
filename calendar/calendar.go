// Package calendar pushes upcoming deadlines to a Google Calendar. The OAuth
// token must have been obtained out of band (for example with the Google CLI
// quickstart flow); a headless backend only refreshes it.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// recordProperty is the private extended property that ties a calendar event
// back to its source record, so repeated exports update instead of duplicate.
const recordProperty = "campusstudyhub_id"

// Deadline is the minimal view of a record exported to the calendar.
type Deadline struct {
	ID      string
	Title   string
	Due     time.Time
	Details string
}

// Service wraps the Google Calendar API for deadline export.
type Service struct {
	srv        *gcal.Service
	calendarID string
}

// New builds a Service from a client credentials file and a stored token
// file. calendarName selects the target calendar by summary; empty means the
// user's primary calendar.
func New(ctx context.Context, credentialsPath, tokenPath, calendarName string) (*Service, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(b, gcal.CalendarEventsScope, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load oauth token: %w", err)
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	calendarID := "primary"
	if calendarName != "" {
		list, err := srv.CalendarList.List().Do()
		if err != nil {
			return nil, fmt.Errorf("unable to list calendars: %w", err)
		}
		calendarID = ""
		for _, item := range list.Items {
			if item.Summary == calendarName {
				calendarID = item.Id
				break
			}
		}
		if calendarID == "" {
			return nil, fmt.Errorf("calendar %q not found", calendarName)
		}
	}
	return &Service{srv: srv, calendarID: calendarID}, nil
}

// Export upserts one all-day event per deadline, keyed by the record
// identifier carried in a private extended property.
func (s *Service) Export(ctx context.Context, deadlines []Deadline) error {
	for _, d := range deadlines {
		if err := s.exportOne(ctx, d); err != nil {
			return fmt.Errorf("export %q: %w", d.Title, err)
		}
	}
	return nil
}

func (s *Service) exportOne(ctx context.Context, d Deadline) error {
	day := d.Due.Format("2006-01-02")
	event := &gcal.Event{
		Summary:     d.Title,
		Description: d.Details,
		Start:       &gcal.EventDateTime{Date: day},
		End:         &gcal.EventDateTime{Date: day},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{recordProperty: d.ID},
		},
	}

	existing, err := s.findByRecordID(ctx, d.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		_, err := s.srv.Events.Insert(s.calendarID, event).Context(ctx).Do()
		return err
	}
	if eventMatches(existing, event) {
		return nil
	}
	log.WithFields(log.Fields{"record": d.ID, "event": existing.Id}).Debug("updating calendar event")
	_, err = s.srv.Events.Patch(s.calendarID, existing.Id, event).Context(ctx).Do()
	return err
}

func (s *Service) findByRecordID(ctx context.Context, id string) (*gcal.Event, error) {
	res, err := s.srv.Events.List(s.calendarID).
		PrivateExtendedProperty(recordProperty + "=" + id).
		MaxResults(1).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	return res.Items[0], nil
}

func eventMatches(existing, target *gcal.Event) bool {
	if existing.Summary != target.Summary || existing.Description != target.Description {
		return false
	}
	if existing.Start == nil || existing.Start.Date != target.Start.Date {
		return false
	}
	return true
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}
