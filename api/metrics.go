package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type reminderRequestMetrics struct {
	logger           *log.Logger
	start            time.Time
	loadDuration     time.Duration
	classifyDuration time.Duration
	windowDays       int
	recordsScanned   int
	overdue          int
	upcoming         int
	errorStage       string
}

func newReminderRequestMetrics(logger *log.Logger) *reminderRequestMetrics {
	return &reminderRequestMetrics{
		logger: logger,
		start:  time.Now(),
	}
}

func (m *reminderRequestMetrics) ObserveLoad(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.loadDuration = duration
}

func (m *reminderRequestMetrics) ObserveClassify(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.classifyDuration = duration
}

func (m *reminderRequestMetrics) SetWindowDays(days int) {
	m.windowDays = days
}

func (m *reminderRequestMetrics) SetRecordsScanned(count int) {
	if count < 0 {
		count = 0
	}
	m.recordsScanned = count
}

func (m *reminderRequestMetrics) SetResultCounts(overdue, upcoming int) {
	m.overdue = overdue
	m.upcoming = upcoming
}

func (m *reminderRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *reminderRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":           "/api/reminders",
		"status":          status,
		"total_ms":        durationToMillis(time.Since(m.start)),
		"window_days":     m.windowDays,
		"records_scanned": m.recordsScanned,
		"overdue":         m.overdue,
		"upcoming":        m.upcoming,
	}

	if m.loadDuration > 0 {
		fields["load_ms"] = durationToMillis(m.loadDuration)
	}
	if m.classifyDuration > 0 {
		fields["classify_ms"] = durationToMillis(m.classifyDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("reminders.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
