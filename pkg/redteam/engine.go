// Package redteam drives adversarial testing against an injected classifier:
// single-shot attack dispatch, batch robustness evaluation and multi-turn
// adaptive chains.
package redteam

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/classifier"
	"github.com/trustvector/adversary/pkg/infra/metrics"
	"github.com/trustvector/adversary/pkg/types"
)

// EvasionMode selects how the confidence criterion is interpreted: against an
// absolute floor or against the drop relative to the original prediction.
type EvasionMode string

const (
	EvasionModeAbsolute EvasionMode = "absolute"
	EvasionModeRelative EvasionMode = "relative"
)

// AttackRecord is one entry in the append-only attack history.
type AttackRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	AttackType       string    `json:"attack_type"`
	OriginalText     string    `json:"original_text"`
	ModifiedText     string    `json:"modified_text"`
	Evasion          bool      `json:"evasion"`
	ConfidenceBefore float64   `json:"confidence_before"`
	ConfidenceAfter  float64   `json:"confidence_after"`
}

// RobustnessConfig tunes a batch robustness run.
type RobustnessConfig struct {
	SamplesPerText          int         `mapstructure:"samples_per_text"`
	AttackTypes             []string    `mapstructure:"attack_types"`
	ConfidenceDropThreshold float64     `mapstructure:"confidence_drop_threshold"`
	EvasionMode             EvasionMode `mapstructure:"evasion_mode"`
	Intensity               float64     `mapstructure:"intensity"`
	Seed                    int64       `mapstructure:"seed"`
	Parallelism             int         `mapstructure:"parallelism"`
}

func DefaultRobustnessConfig() RobustnessConfig {
	return RobustnessConfig{
		SamplesPerText:          1,
		ConfidenceDropThreshold: 0.5,
		EvasionMode:             EvasionModeAbsolute,
		Intensity:               attack.DefaultOptions().Intensity,
		Seed:                    attack.DefaultOptions().Seed,
		Parallelism:             4,
	}
}

// RobustnessReport is consumed by the host reporting layer.
type RobustnessReport struct {
	TotalAttacks       int            `json:"total_attacks"`
	SuccessfulEvasions int            `json:"successful_evasions"`
	EvasionRate        float64        `json:"evasion_rate"`
	AvgConfidenceDrop  float64        `json:"avg_confidence_drop"`
	AttackHistogram    map[string]int `json:"attack_histogram"`
	FailedSamples      int            `json:"failed_samples"`
}

// Engine dispatches attack vectors through the closed registry and runs
// partial-failure-tolerant batch evaluation.
type Engine struct {
	logger   *logrus.Logger
	registry *attack.Registry

	mu      sync.Mutex
	history []AttackRecord
}

func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		logger:   logger,
		registry: attack.NewRegistry(logger),
	}
}

// ExecuteAttack runs one named vector. Unknown names are the only error path;
// vector execution itself never fails.
func (e *Engine) ExecuteAttack(name, text string, opts attack.Options) (types.AttackResult, error) {
	vector, err := e.registry.Get(name)
	if err != nil {
		return types.AttackResult{}, err
	}

	result := vector.Execute(text, opts)
	metrics.AttacksTotal.WithLabelValues(name).Inc()

	e.logger.WithFields(logrus.Fields{
		"attack_type": name,
		"applied":     result.Applied(),
		"ratio":       result.Metadata.Ratio,
	}).Debug("attack executed")

	return result, nil
}

// ExecuteAll runs every registered vector against the text.
func (e *Engine) ExecuteAll(text string, opts attack.Options) []types.AttackResult {
	names := e.registry.Names()
	results := make([]types.AttackResult, 0, len(names))
	for _, name := range names {
		result, err := e.ExecuteAttack(name, text, opts)
		if err != nil {
			continue
		}
		results = append(results, result)
	}
	return results
}

// AttackTypes returns the closed set of dispatchable vector names.
func (e *Engine) AttackTypes() []string {
	return e.registry.Names()
}

// History returns a copy of the append-only attack history.
func (e *Engine) History() []AttackRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]AttackRecord, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) appendHistory(records []AttackRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, records...)
}

// textOutcome accumulates per-text results before the merge, so texts can be
// evaluated concurrently without shared state.
type textOutcome struct {
	records   []AttackRecord
	histogram map[string]int
	evasions  int
	dropSum   float64
	failed    int
}

// TestModelRobustness evaluates the classifier against sampled attacks over
// every input text. Texts are evaluated concurrently; samples within a text
// run sequentially from a per-text seed so results are reproducible. A
// failing classifier call excludes that sample and is counted; the batch
// never aborts on classifier errors.
func (e *Engine) TestModelRobustness(
	ctx context.Context,
	predict classifier.PredictFunc,
	texts []string,
	cfg RobustnessConfig,
) (RobustnessReport, error) {
	if cfg.SamplesPerText <= 0 {
		cfg.SamplesPerText = 1
	}
	if cfg.ConfidenceDropThreshold == 0 {
		cfg.ConfidenceDropThreshold = 0.5
	}
	if cfg.EvasionMode == "" {
		cfg.EvasionMode = EvasionModeAbsolute
	}
	if cfg.Intensity == 0 {
		cfg.Intensity = attack.DefaultOptions().Intensity
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	attackTypes := cfg.AttackTypes
	if len(attackTypes) == 0 {
		attackTypes = e.registry.Names()
	}

	outcomes := make([]textOutcome, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			outcome, err := e.evaluateText(gctx, predict, text, attackTypes, cfg, cfg.Seed+int64(i))
			outcomes[i] = outcome
			return err
		})
	}

	err := g.Wait()

	report := RobustnessReport{AttackHistogram: map[string]int{}}
	var dropSum float64
	for _, outcome := range outcomes {
		e.appendHistory(outcome.records)
		report.TotalAttacks += len(outcome.records)
		report.SuccessfulEvasions += outcome.evasions
		report.FailedSamples += outcome.failed
		dropSum += outcome.dropSum
		for name, count := range outcome.histogram {
			report.AttackHistogram[name] += count
		}
	}
	if report.TotalAttacks > 0 {
		report.EvasionRate = float64(report.SuccessfulEvasions) / float64(report.TotalAttacks)
		report.AvgConfidenceDrop = dropSum / float64(report.TotalAttacks)
	}

	e.logger.WithFields(logrus.Fields{
		"total_attacks":       report.TotalAttacks,
		"successful_evasions": report.SuccessfulEvasions,
		"evasion_rate":        report.EvasionRate,
		"failed_samples":      report.FailedSamples,
	}).Info("robustness test completed")

	return report, err
}

func (e *Engine) evaluateText(
	ctx context.Context,
	predict classifier.PredictFunc,
	text string,
	attackTypes []string,
	cfg RobustnessConfig,
	seed int64,
) (textOutcome, error) {
	outcome := textOutcome{histogram: map[string]int{}}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	original, err := predict(ctx, text)
	if err != nil {
		metrics.ClassifierFailuresTotal.Inc()
		e.logger.WithError(err).Warn("original prediction failed, excluding text")
		outcome.failed += cfg.SamplesPerText
		return outcome, nil
	}

	rng := rand.New(rand.NewSource(seed))

	for sample := 0; sample < cfg.SamplesPerText; sample++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		name := attackTypes[rng.Intn(len(attackTypes))]
		result, err := e.ExecuteAttack(name, text, attack.Options{
			Intensity: cfg.Intensity,
			Seed:      rng.Int63(),
		})
		if err != nil {
			outcome.failed++
			continue
		}

		adversarial, err := predict(ctx, result.ModifiedText)
		if err != nil {
			metrics.ClassifierFailuresTotal.Inc()
			e.logger.WithError(err).Warn("adversarial prediction failed, excluding sample")
			outcome.failed++
			continue
		}

		drop := original.Score - adversarial.Score
		evasion := original.Label != adversarial.Label
		if !evasion {
			switch cfg.EvasionMode {
			case EvasionModeRelative:
				evasion = drop > cfg.ConfidenceDropThreshold
			default:
				evasion = adversarial.Score < cfg.ConfidenceDropThreshold
			}
		}

		if evasion {
			outcome.evasions++
			metrics.EvasionsTotal.WithLabelValues(name).Inc()
		}
		outcome.dropSum += drop
		outcome.histogram[name]++
		outcome.records = append(outcome.records, AttackRecord{
			Timestamp:        time.Now().UTC(),
			AttackType:       name,
			OriginalText:     text,
			ModifiedText:     result.ModifiedText,
			Evasion:          evasion,
			ConfidenceBefore: original.Score,
			ConfidenceAfter:  adversarial.Score,
		})
	}

	return outcome, nil
}
