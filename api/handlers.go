package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/zestyzy/CampusStudyHub/calendar"
	"github.com/zestyzy/CampusStudyHub/config"
	"github.com/zestyzy/CampusStudyHub/domain"
	"github.com/zestyzy/CampusStudyHub/fileindex"
	"github.com/zestyzy/CampusStudyHub/lan"
)

// requestError distinguishes deliberate bad-request responses raised while
// resolving inputs from storage failures.
func requestError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return storeError(c, err)
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, cols Collections, settings Settings, notifier Notifier, exporter CalendarExporter, auth Authenticator, logger *log.Logger) {
	g := e.Group("/api", requireAuth(auth))
	registerCollection(g, "tasks", cols.Tasks)
	registerCollection[domain.Conference](g, "conferences", normalizedConferences{cols.Conferences})
	registerCollection(g, "grades", cols.Grades)
	registerCollection(g, "experiments", cols.Experiments)
	registerCollection(g, "papers", cols.Papers)
	g.GET("/reminders", getReminders(cols, settings, logger))
	g.POST("/notify", postNotify(cols, settings, notifier))
	g.GET("/settings", getSettings(settings))
	g.PUT("/settings", putSettings(settings))
	g.GET("/files", getFileIndex(settings))
	g.POST("/files/export", exportFileIndex(settings))
	g.POST("/calendar/export", exportCalendar(cols, settings, exporter))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// normalizedConferences fills version-migration defaults on every read so
// clients never see entries written by older versions half-populated.
type normalizedConferences struct {
	Collection[domain.Conference]
}

func (n normalizedConferences) Load(ctx context.Context) ([]domain.Conference, error) {
	conferences, err := n.Collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NormalizeConferences(conferences), nil
}

type remindersResponse struct {
	WindowDays  int                   `json:"window_days"`
	Tasks       domain.Classification `json:"tasks"`
	Conferences domain.Classification `json:"conferences"`
}

// reminderInputs loads the date-bearing collections and resolves the
// effective window, honoring the ?window and ?on query overrides.
func reminderInputs(c echo.Context, cols Collections, settings Settings) (tasks []domain.Task, conferences []domain.Conference, window int, now time.Time, err error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, nil, 0, time.Time{}, err
	}
	window = cfg.UpcomingWindowDays

	if raw := strings.TrimSpace(c.QueryParam("window")); raw != "" {
		window, err = strconv.Atoi(raw)
		if err != nil || window < 0 {
			return nil, nil, 0, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid window")
		}
	}
	now = time.Now()
	if raw := strings.TrimSpace(c.QueryParam("on")); raw != "" {
		now, err = time.Parse(domain.DateLayout, raw)
		if err != nil {
			return nil, nil, 0, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
	}

	ctx := c.Request().Context()
	tasks, err = cols.Tasks.Load(ctx)
	if err != nil {
		return nil, nil, 0, time.Time{}, err
	}
	conferences, err = cols.Conferences.Load(ctx)
	if err != nil {
		return nil, nil, 0, time.Time{}, err
	}
	return tasks, domain.NormalizeConferences(conferences), window, now, nil
}

func getReminders(cols Collections, settings Settings, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newReminderRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		loadStart := time.Now()
		tasks, conferences, window, now, err := reminderInputs(c, cols, settings)
		metrics.ObserveLoad(time.Since(loadStart))
		if err != nil {
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				metrics.SetErrorStage("bad_request")
				return httpErr
			}
			metrics.SetErrorStage("load")
			return storeError(c, err)
		}
		metrics.SetWindowDays(window)
		metrics.SetRecordsScanned(len(tasks) + len(conferences))

		classifyStart := time.Now()
		resp := remindersResponse{
			WindowDays:  window,
			Tasks:       domain.Classify(tasks, window, now),
			Conferences: domain.Classify(conferences, window, now),
		}
		metrics.ObserveClassify(time.Since(classifyStart))
		metrics.SetResultCounts(
			len(resp.Tasks.Overdue)+len(resp.Conferences.Overdue),
			len(resp.Tasks.Upcoming)+len(resp.Conferences.Upcoming),
		)

		err = c.JSON(http.StatusOK, resp)
		return err
	}
}

type notifyRequest struct {
	Message string `json:"message"`
}

type notifyResponse struct {
	Message string       `json:"message"`
	Results []lan.Result `json:"results"`
}

func postNotify(cols Collections, settings Settings, notifier Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var req notifyRequest
		if body, err := io.ReadAll(c.Request().Body); err == nil && len(body) > 0 {
			if err := sonic.Unmarshal(body, &req); err != nil {
				return c.String(http.StatusBadRequest, "malformed request")
			}
		}

		cfg, err := settings.Load()
		if err != nil {
			return storeError(c, err)
		}
		if len(cfg.Peers) == 0 {
			return c.String(http.StatusBadRequest, "no lan peers configured")
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			tasks, conferences, window, now, err := reminderInputs(c, cols, settings)
			if err != nil {
				return requestError(c, err)
			}
			message = reminderMessage(tasks, conferences, window, now)
			if message == "" {
				return c.String(http.StatusBadRequest, "nothing due and no message given")
			}
		}

		results := notifier.Broadcast(ctx, cfg.Peers, message)
		return c.JSON(http.StatusOK, notifyResponse{Message: message, Results: results})
	}
}

// reminderMessage renders the currently overdue and upcoming records as the
// plain text payload of a LAN datagram.
func reminderMessage(tasks []domain.Task, conferences []domain.Conference, window int, now time.Time) string {
	taskByID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}
	confByID := make(map[string]domain.Conference, len(conferences))
	for _, cf := range conferences {
		confByID[cf.ID] = cf
	}

	taskClass := domain.Classify(tasks, window, now)
	confClass := domain.Classify(conferences, window, now)

	var lines []string
	for _, id := range taskClass.Overdue {
		t := taskByID[id]
		lines = append(lines, fmt.Sprintf("OVERDUE task: %s (due %s)", t.Title, t.DueDate))
	}
	for _, id := range confClass.Overdue {
		cf := confByID[id]
		lines = append(lines, fmt.Sprintf("PASSED deadline: %s %s (%s)", cf.Name, cf.SubmissionDeadline, cf.Category))
	}
	for _, id := range taskClass.Upcoming {
		t := taskByID[id]
		lines = append(lines, fmt.Sprintf("Due soon: %s (due %s)", t.Title, t.DueDate))
	}
	for _, id := range confClass.Upcoming {
		cf := confByID[id]
		lines = append(lines, fmt.Sprintf("Deadline soon: %s %s (%s)", cf.Name, cf.SubmissionDeadline, cf.Category))
	}
	return strings.Join(lines, "\n")
}

func getSettings(settings Settings) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg, err := settings.Load()
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, cfg)
	}
}

func putSettings(settings Settings) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.String(http.StatusBadRequest, "unable to read body")
		}
		var cfg config.Config
		if err := sonic.Unmarshal(body, &cfg); err != nil {
			return c.String(http.StatusBadRequest, "malformed settings")
		}
		if err := cfg.Validate(); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if err := settings.Save(cfg); err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, cfg)
	}
}

func getFileIndex(settings Settings) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg, err := settings.Load()
		if err != nil {
			return storeError(c, err)
		}
		entries, err := fileindex.Scan(cfg.BaseDirectory, cfg.Courses)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, entries)
	}
}

type exportFilesResponse struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

func exportFileIndex(settings Settings) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg, err := settings.Load()
		if err != nil {
			return storeError(c, err)
		}
		entries, err := fileindex.Scan(cfg.BaseDirectory, cfg.Courses)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		path := filepath.Join(cfg.BaseDirectory, "files_index.csv")
		if err := fileindex.WriteCSV(path, entries); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, exportFilesResponse{Path: path, Entries: len(entries)})
	}
}

type exportCalendarResponse struct {
	Exported int `json:"exported"`
}

func exportCalendar(cols Collections, settings Settings, exporter CalendarExporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		if exporter == nil {
			return c.String(http.StatusServiceUnavailable, "calendar export not configured")
		}
		tasks, conferences, window, now, err := reminderInputs(c, cols, settings)
		if err != nil {
			return requestError(c, err)
		}
		deadlines := calendarDeadlines(tasks, conferences, window, now)
		if err := exporter.Export(c.Request().Context(), deadlines); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusBadGateway, err.Error())
		}
		return c.JSON(http.StatusOK, exportCalendarResponse{Exported: len(deadlines)})
	}
}

// calendarDeadlines picks the overdue and upcoming records and shapes them
// for the calendar exporter. Terminal and undated records never export.
func calendarDeadlines(tasks []domain.Task, conferences []domain.Conference, window int, now time.Time) []calendar.Deadline {
	deadlines := []calendar.Deadline{}
	taskClass := domain.Classify(tasks, window, now)
	confClass := domain.Classify(conferences, window, now)
	wanted := make(map[string]struct{})
	for _, id := range append(append([]string{}, taskClass.Overdue...), taskClass.Upcoming...) {
		wanted[id] = struct{}{}
	}
	for _, id := range append(append([]string{}, confClass.Overdue...), confClass.Upcoming...) {
		wanted[id] = struct{}{}
	}

	for _, t := range tasks {
		if _, ok := wanted[t.ID]; !ok {
			continue
		}
		due, _ := t.Due()
		deadlines = append(deadlines, calendar.Deadline{
			ID:      t.ID,
			Title:   t.Title,
			Due:     due,
			Details: fmt.Sprintf("Course: %s\nPriority: %s\nStatus: %s", t.Course, t.Priority, t.Status),
		})
	}
	for _, cf := range conferences {
		if _, ok := wanted[cf.ID]; !ok {
			continue
		}
		due, _ := cf.Due()
		deadlines = append(deadlines, calendar.Deadline{
			ID:      cf.ID,
			Title:   cf.Name + " submission deadline",
			Due:     due,
			Details: fmt.Sprintf("Category: %s\n%s", cf.Category, cf.URL),
		})
	}
	return deadlines
}
