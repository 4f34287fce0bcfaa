// Package remediation turns threat events into tiered response actions:
// quarantine, alerting, incident opening, review flags and monitoring, with
// an append-only audit trail.
package remediation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/infra/metrics"
	"github.com/trustvector/adversary/pkg/types"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "remediation_failed"

	defaultEventIDLength = 16
	defaultDedupSize     = 4096
)

// Notifier receives escalation-style actions. The host wires it to its own
// alerting; a nil notifier downgrades those actions to structured logs.
type Notifier interface {
	Notify(level, title string, details map[string]interface{}, eventID string) error
}

// QuarantineEntry is one held text in the quarantine queue.
type QuarantineEntry struct {
	EventID      string         `json:"event_id"`
	Text         string         `json:"text"`
	ThreatLevel  types.Severity `json:"threat_level"`
	QuarantineAt time.Time      `json:"quarantine_at"`
}

// Config tunes remediation behavior.
type Config struct {
	EventIDLength int `mapstructure:"event_id_length"`
	DedupSize     int `mapstructure:"dedup_size"`
}

func DefaultConfig() Config {
	return Config{
		EventIDLength: defaultEventIDLength,
		DedupSize:     defaultDedupSize,
	}
}

// Engine maps aggregate severity to a fixed action set and executes it.
// Duplicate events (same text seen recently) are still remediated but marked
// so downstream consumers can suppress repeat alerts.
type Engine struct {
	logger   *logrus.Logger
	notifier Notifier
	cfg      Config
	seen     *lru.Cache[string, time.Time]

	mu         sync.Mutex
	audit      []types.RemediationRecord
	quarantine map[string]QuarantineEntry
}

func NewEngine(logger *logrus.Logger, notifier Notifier, cfg Config) *Engine {
	if cfg.EventIDLength <= 0 || cfg.EventIDLength > sha256.Size*2 {
		cfg.EventIDLength = defaultEventIDLength
	}
	if cfg.DedupSize <= 0 {
		cfg.DedupSize = defaultDedupSize
	}
	// NewLRU only fails on a non-positive size, which is guarded above.
	seen, _ := lru.New[string, time.Time](cfg.DedupSize)
	return &Engine{
		logger:     logger,
		notifier:   notifier,
		cfg:        cfg,
		seen:       seen,
		quarantine: map[string]QuarantineEntry{},
	}
}

// EventID derives a stable identifier from the event text. Identical text
// always maps to the same ID, which is what the dedup cache keys on.
func (e *Engine) EventID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:e.cfg.EventIDLength]
}

// ActionsFor returns the fixed action set for a threat level.
func ActionsFor(level types.Severity) []types.RemediationAction {
	switch level {
	case types.SeverityCritical:
		return []types.RemediationAction{types.ActionQuarantine, types.ActionEscalateAlert, types.ActionOpenIncident}
	case types.SeverityHigh:
		return []types.RemediationAction{types.ActionQuarantine, types.ActionFlagForReview}
	case types.SeverityMedium:
		return []types.RemediationAction{types.ActionFlagForReview, types.ActionEnhancedMonitoring}
	case types.SeverityLow:
		return []types.RemediationAction{types.ActionLogOnly}
	default:
		return []types.RemediationAction{types.ActionNone}
	}
}

// Remediate executes the action set for the event's aggregate severity. The
// record is appended to the audit log whether or not every action succeeded;
// a failed action marks the record instead of dropping it.
func (e *Engine) Remediate(ctx context.Context, event types.ThreatEvent) types.RemediationRecord {
	eventID := e.EventID(event.Text)
	_, duplicate := e.seen.Get(eventID)
	e.seen.Add(eventID, time.Now().UTC())

	record := types.RemediationRecord{
		RecordID:    uuid.New().String(),
		EventID:     eventID,
		ThreatLevel: event.AggregateSeverity,
		Status:      StatusCompleted,
		Duplicate:   duplicate,
		Timestamp:   time.Now().UTC(),
	}

	for _, action := range ActionsFor(event.AggregateSeverity) {
		if err := ctx.Err(); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			break
		}
		if err := e.execute(action, event, eventID, duplicate); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			e.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": eventID,
				"action":   action,
			}).Error("remediation action failed")
			continue
		}
		record.ActionsTaken = append(record.ActionsTaken, action)
	}

	e.mu.Lock()
	e.audit = append(e.audit, record)
	e.mu.Unlock()

	metrics.RemediationsTotal.WithLabelValues(event.AggregateSeverity.String(), record.Status).Inc()

	e.logger.WithFields(logrus.Fields{
		"event_id":     eventID,
		"threat_level": event.AggregateSeverity.String(),
		"actions":      record.ActionsTaken,
		"status":       record.Status,
		"duplicate":    duplicate,
	}).Info("remediation completed")

	return record
}

func (e *Engine) execute(action types.RemediationAction, event types.ThreatEvent, eventID string, duplicate bool) error {
	switch action {
	case types.ActionQuarantine:
		e.mu.Lock()
		e.quarantine[eventID] = QuarantineEntry{
			EventID:      eventID,
			Text:         event.Text,
			ThreatLevel:  event.AggregateSeverity,
			QuarantineAt: time.Now().UTC(),
		}
		e.mu.Unlock()
		return nil

	case types.ActionEscalateAlert:
		return e.notify("alert", "threat detected", event, eventID, duplicate)

	case types.ActionOpenIncident:
		return e.notify("incident", "critical threat incident", event, eventID, duplicate)

	case types.ActionFlagForReview:
		return e.notify("review", "text flagged for review", event, eventID, duplicate)

	case types.ActionEnhancedMonitoring:
		e.logger.WithField("event_id", eventID).Info("enhanced monitoring enabled")
		return nil

	case types.ActionLogOnly:
		e.logger.WithFields(logrus.Fields{
			"event_id":  eventID,
			"detectors": event.DetectorsTriggered,
		}).Info("low severity threat logged")
		return nil

	case types.ActionNone:
		return nil

	default:
		return fmt.Errorf("unknown remediation action %q", action)
	}
}

func (e *Engine) notify(level, title string, event types.ThreatEvent, eventID string, duplicate bool) error {
	details := map[string]interface{}{
		"threat_level": event.AggregateSeverity.String(),
		"detectors":    event.DetectorsTriggered,
		"duplicate":    duplicate,
	}
	if e.notifier == nil {
		e.logger.WithFields(logrus.Fields{
			"event_id": eventID,
			"level":    level,
			"title":    title,
		}).Warn("no notifier configured, logging escalation")
		return nil
	}
	return e.notifier.Notify(level, title, details, eventID)
}

// AuditLog returns a copy of the append-only audit trail.
func (e *Engine) AuditLog() []types.RemediationRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.RemediationRecord, len(e.audit))
	copy(out, e.audit)
	return out
}

// Quarantined reports whether an event is currently held.
func (e *Engine) Quarantined(eventID string) (QuarantineEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.quarantine[eventID]
	return entry, ok
}

// Release removes an event from quarantine, returning false when it was not
// held.
func (e *Engine) Release(eventID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.quarantine[eventID]; !ok {
		return false
	}
	delete(e.quarantine, eventID)
	e.logger.WithField("event_id", eventID).Info("quarantine released")
	return true
}

// QuarantineSize returns the number of held entries.
func (e *Engine) QuarantineSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.quarantine)
}
