package types

import "time"

// Classification labels produced by the injected classifier.
const (
	LabelSpam    = "SPAM"
	LabelNotSpam = "NOT_SPAM"
)

// Prediction is the output of the host-injected classifier for a single text.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Severity is the ordinal threat level driving aggregation and remediation.
// The zero value is SeverityNone; ordering is significant.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityNone:     "NONE",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "NONE"
}

// Max returns the higher of two severities.
func (s Severity) Max(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// AttackMetadata describes how much of the input an attack vector touched.
// Ratio is zero exactly when ModifiedText equals OriginalText.
type AttackMetadata struct {
	UnitsModified int                    `json:"units_modified"`
	TotalUnits    int                    `json:"total_units"`
	Ratio         float64                `json:"ratio"`
	Error         bool                   `json:"error,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

// AttackResult is the immutable outcome of a single attack execution.
type AttackResult struct {
	AttackType   string         `json:"attack_type"`
	OriginalText string         `json:"original_text"`
	ModifiedText string         `json:"modified_text"`
	Metadata     AttackMetadata `json:"metadata"`
}

// Applied reports whether the vector actually changed the text.
func (r AttackResult) Applied() bool {
	return r.ModifiedText != r.OriginalText
}

// ThreatDetection is the outcome of one detector over one input.
type ThreatDetection struct {
	DetectorName string                 `json:"detector_name"`
	Detected     bool                   `json:"detected"`
	Severity     Severity               `json:"severity"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// ThreatEvent aggregates all detections for a single text. AggregateSeverity
// is maintained as the worst severity seen; AddDetection never lowers it.
type ThreatEvent struct {
	Text               string            `json:"text"`
	Detections         []ThreatDetection `json:"detections"`
	DetectorsTriggered []string          `json:"detectors_triggered"`
	AggregateSeverity  Severity          `json:"aggregate_severity"`
}

// AddDetection appends a detection and raises the aggregate severity using
// the fixed worst-of rule: any triggered detection contributes at least LOW.
func (e *ThreatEvent) AddDetection(d ThreatDetection) {
	e.Detections = append(e.Detections, d)
	if !d.Detected {
		return
	}
	e.DetectorsTriggered = append(e.DetectorsTriggered, d.DetectorName)
	contributed := d.Severity
	if contributed == SeverityNone {
		contributed = SeverityLow
	}
	e.AggregateSeverity = e.AggregateSeverity.Max(contributed)
}

// RemediationAction is one enforcement step taken for a threat event.
type RemediationAction string

const (
	ActionQuarantine         RemediationAction = "quarantine"
	ActionEscalateAlert      RemediationAction = "escalate_alert"
	ActionOpenIncident       RemediationAction = "open_incident"
	ActionFlagForReview      RemediationAction = "flag_for_review"
	ActionEnhancedMonitoring RemediationAction = "enhanced_monitoring"
	ActionLogOnly            RemediationAction = "log_only"
	ActionNone               RemediationAction = "no_action"
)

// RemediationRecord is the audit entry produced for every remediated event.
// EventID is a stable hash of the offending text: identical text always maps
// to the same EventID, while repeated remediations still append new records.
type RemediationRecord struct {
	RecordID     string              `json:"record_id"`
	EventID      string              `json:"event_id"`
	ThreatLevel  Severity            `json:"threat_level"`
	ActionsTaken []RemediationAction `json:"actions_taken"`
	Status       string              `json:"status"`
	Error        string              `json:"error,omitempty"`
	Duplicate    bool                `json:"duplicate,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}
