// Package blueteam is the defensive counterpart to the red team: it funnels
// incoming text through the detector suite, classifies it, aggregates the
// findings into a threat event and hands confirmed threats to remediation.
package blueteam

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/trustvector/adversary/pkg/classifier"
	"github.com/trustvector/adversary/pkg/detector"
	"github.com/trustvector/adversary/pkg/infra/metrics"
	"github.com/trustvector/adversary/pkg/remediation"
	"github.com/trustvector/adversary/pkg/types"
)

// Config tunes the pipeline.
type Config struct {
	ConfidenceBand detector.Band      `mapstructure:"confidence_band"`
	Remediation    remediation.Config `mapstructure:"remediation"`
	Parallelism    int                `mapstructure:"parallelism"`
}

func DefaultConfig() Config {
	return Config{
		ConfidenceBand: detector.DefaultBand(),
		Remediation:    remediation.DefaultConfig(),
		Parallelism:    4,
	}
}

// ProcessResult is the pipeline verdict for one text.
type ProcessResult struct {
	Text           string                   `json:"text"`
	Prediction     types.Prediction         `json:"prediction"`
	Event          types.ThreatEvent        `json:"event"`
	ThreatDetected bool                     `json:"threat_detected"`
	SeverityScore  float64                  `json:"severity_score"`
	FinalAction    types.RemediationAction  `json:"final_action"`
	Remediation    *types.RemediationRecord `json:"remediation,omitempty"`
}

// BatchResult carries the per-item outcomes of a batch run. Items whose
// classifier call failed are excluded and counted rather than aborting the
// batch.
type BatchResult struct {
	Results []ProcessResult `json:"results"`
	Failed  int             `json:"failed"`
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Processed       int            `json:"processed"`
	ThreatsDetected int            `json:"threats_detected"`
	BySeverity      map[string]int `json:"by_severity"`
	Failed          int            `json:"failed"`
}

// Pipeline runs the fixed detector order, then the classifier, then the
// output detector, and delegates remediation for anything that triggered.
type Pipeline struct {
	logger      *logrus.Logger
	textDets    []detector.TextDetector
	outputDet   detector.OutputDetector
	remediation *remediation.Engine
	parallelism int

	mu    sync.Mutex
	stats Stats
}

func NewPipeline(logger *logrus.Logger, notifier remediation.Notifier, cfg Config) *Pipeline {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &Pipeline{
		logger:      logger,
		textDets:    detector.TextDetectors(logger),
		outputDet:   detector.NewConfidenceAnomalyDetector(logger, cfg.ConfidenceBand),
		remediation: remediation.NewEngine(logger, notifier, cfg.Remediation),
		parallelism: cfg.Parallelism,
		stats:       Stats{BySeverity: map[string]int{}},
	}
}

// Remediation exposes the underlying engine for audit and quarantine access.
func (p *Pipeline) Remediation() *remediation.Engine {
	return p.remediation
}

// ProcessIncomingText runs the full defensive pass over one text. A failing
// classifier call is terminal here: the confidence detector and the final
// verdict both need a prediction.
func (p *Pipeline) ProcessIncomingText(ctx context.Context, text string, predict classifier.PredictFunc) (ProcessResult, error) {
	event := types.ThreatEvent{Text: text}

	for _, det := range p.textDets {
		if err := ctx.Err(); err != nil {
			return ProcessResult{}, err
		}
		p.record(&event, det.Detect(text))
	}

	pred, err := predict(ctx, text)
	if err != nil {
		metrics.ClassifierFailuresTotal.Inc()
		p.countFailure()
		return ProcessResult{}, err
	}

	p.record(&event, p.outputDet.DetectOutput(pred))

	result := ProcessResult{
		Text:           text,
		Prediction:     pred,
		Event:          event,
		ThreatDetected: len(event.DetectorsTriggered) > 0,
		SeverityScore:  severityScore(event),
		FinalAction:    finalAction(event.AggregateSeverity),
	}

	if result.ThreatDetected {
		record := p.remediation.Remediate(ctx, event)
		result.Remediation = &record
	}

	p.countResult(result)

	p.logger.WithFields(logrus.Fields{
		"threat_detected":    result.ThreatDetected,
		"aggregate_severity": event.AggregateSeverity.String(),
		"detectors":          event.DetectorsTriggered,
		"final_action":       result.FinalAction,
	}).Info("text processed")

	return result, nil
}

// ProcessBatch runs the pipeline concurrently over a slice of texts. Per-item
// failures are counted; the batch finishes unless the context is cancelled.
func (p *Pipeline) ProcessBatch(ctx context.Context, texts []string, predict classifier.PredictFunc) (BatchResult, error) {
	outcomes := make([]*ProcessResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			result, err := p.ProcessIncomingText(gctx, text, predict)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.WithError(err).Warn("batch item failed")
				return nil
			}
			outcomes[i] = &result
			return nil
		})
	}

	err := g.Wait()

	batch := BatchResult{}
	for _, outcome := range outcomes {
		if outcome == nil {
			batch.Failed++
			continue
		}
		batch.Results = append(batch.Results, *outcome)
	}
	return batch, err
}

// Statistics returns a snapshot of pipeline counters.
func (p *Pipeline) Statistics() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := Stats{
		Processed:       p.stats.Processed,
		ThreatsDetected: p.stats.ThreatsDetected,
		Failed:          p.stats.Failed,
		BySeverity:      map[string]int{},
	}
	for severity, count := range p.stats.BySeverity {
		out.BySeverity[severity] = count
	}
	return out
}

func (p *Pipeline) record(event *types.ThreatEvent, detection types.ThreatDetection) {
	event.AddDetection(detection)
	if detection.Detected {
		metrics.DetectionsTotal.WithLabelValues(detection.DetectorName, detection.Severity.String()).Inc()
	}
}

func (p *Pipeline) countResult(result ProcessResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Processed++
	if result.ThreatDetected {
		p.stats.ThreatsDetected++
		p.stats.BySeverity[result.Event.AggregateSeverity.String()]++
	}
}

func (p *Pipeline) countFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Failed++
}

// finalAction is the headline verdict callers branch on: the leading action
// of the remediation tier for the aggregate severity. Deriving it from the
// tier table keeps the verdict and the executed actions in lockstep.
func finalAction(severity types.Severity) types.RemediationAction {
	actions := remediation.ActionsFor(severity)
	if len(actions) == 0 {
		return types.ActionNone
	}
	return actions[0]
}

// severityScore is a weighted diagnostic in [0, 1]. It never drives
// decisions; the aggregate severity does.
func severityScore(event types.ThreatEvent) float64 {
	weights := map[types.Severity]float64{
		types.SeverityLow:      0.25,
		types.SeverityMedium:   0.5,
		types.SeverityHigh:     0.75,
		types.SeverityCritical: 1.0,
	}
	score := 0.0
	for _, detection := range event.Detections {
		if !detection.Detected {
			continue
		}
		score += weights[detection.Severity]
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
