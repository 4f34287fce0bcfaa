package redteam

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/classifier"
	"github.com/trustvector/adversary/pkg/infra/metrics"
	"github.com/trustvector/adversary/pkg/types"
)

// State is the observable chain state a policy picks the next action from.
type State struct {
	CurrentText    string
	Label          string
	Confidence     float64
	AttackSequence []string
	TurnCount      int
}

// Policy selects the next attack vector for a given state. Implementations
// must only use the supplied rng for randomness so chains stay reproducible.
type Policy func(state State, rng *rand.Rand) string

// DefaultPolicy maps classifier confidence to an attack family: confident
// predictions get character-level noise, mid-range ones get vocabulary
// substitution, and already-shaky ones get injection or encoding pressure.
func DefaultPolicy(state State, rng *rand.Rand) string {
	switch {
	case state.Confidence > 0.8:
		return pickAction(rng, attack.CharacterObfuscationName, attack.HomographSubstitutionName)
	case state.Confidence > 0.5:
		return attack.SemanticShiftName
	default:
		return pickAction(rng, attack.MultilingualInjectionName, attack.EncodingEvasionName)
	}
}

func pickAction(rng *rand.Rand, actions ...string) string {
	return actions[rng.Intn(len(actions))]
}

// ChainConfig tunes one adaptive chain run.
type ChainConfig struct {
	MaxTurns            int     `mapstructure:"max_turns"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	Intensity           float64 `mapstructure:"intensity"`
	Seed                int64   `mapstructure:"seed"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		MaxTurns:            5,
		ConfidenceThreshold: 0.5,
		Intensity:           attack.DefaultOptions().Intensity,
		Seed:                attack.DefaultOptions().Seed,
	}
}

// Transition records one turn of the chain for offline inspection.
type Transition struct {
	Turn             int     `json:"turn"`
	Action           string  `json:"action"`
	LabelBefore      string  `json:"label_before"`
	LabelAfter       string  `json:"label_after"`
	ConfidenceBefore float64 `json:"confidence_before"`
	ConfidenceAfter  float64 `json:"confidence_after"`
	Reward           float64 `json:"reward"`
}

// ChainResult is the outcome of a full chain run.
type ChainResult struct {
	EvasionSucceeded  bool         `json:"evasion_succeeded"`
	InitialText       string       `json:"initial_text"`
	FinalText         string       `json:"final_text"`
	InitialLabel      string       `json:"initial_label"`
	FinalLabel        string       `json:"final_label"`
	InitialConfidence float64      `json:"initial_confidence"`
	FinalConfidence   float64      `json:"final_confidence"`
	AttackChain       []string     `json:"attack_chain"`
	TurnsNeeded       int          `json:"turns_needed"`
	MaxTurns          int          `json:"max_turns"`
	TotalReward       float64      `json:"total_reward"`
	Transitions       []Transition `json:"transitions"`
}

// Orchestrator runs sequential adaptive chains: classify, pick a vector from
// the current state, mutate, classify again, until the classifier flips or
// the turn budget runs out.
type Orchestrator struct {
	logger  *logrus.Logger
	engine  *Engine
	predict classifier.PredictFunc
	policy  Policy
}

func NewOrchestrator(logger *logrus.Logger, engine *Engine, predict classifier.PredictFunc) *Orchestrator {
	return &Orchestrator{
		logger:  logger,
		engine:  engine,
		predict: predict,
		policy:  DefaultPolicy,
	}
}

// SetPolicy swaps the action-selection policy. Passing nil restores the
// default.
func (o *Orchestrator) SetPolicy(policy Policy) {
	if policy == nil {
		policy = DefaultPolicy
	}
	o.policy = policy
}

// RunChain drives one chain against the orchestrator's classifier. Unlike the
// batch path, classifier errors here are terminal: an interactive chain has
// no further state to advance without a prediction.
func (o *Orchestrator) RunChain(ctx context.Context, text string, cfg ChainConfig) (ChainResult, error) {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 5
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.5
	}
	if cfg.Intensity == 0 {
		cfg.Intensity = attack.DefaultOptions().Intensity
	}

	if err := ctx.Err(); err != nil {
		return ChainResult{}, err
	}
	initial, err := o.predict(ctx, text)
	if err != nil {
		metrics.ClassifierFailuresTotal.Inc()
		return ChainResult{}, err
	}

	state := State{
		CurrentText: text,
		Label:       initial.Label,
		Confidence:  initial.Score,
	}
	result := ChainResult{
		InitialText:       text,
		InitialLabel:      initial.Label,
		InitialConfidence: initial.Score,
		MaxTurns:          cfg.MaxTurns,
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	for turn := 1; turn <= cfg.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			o.finish(&result, state)
			return result, err
		}

		action := o.policy(state, rng)
		attacked, err := o.engine.ExecuteAttack(action, state.CurrentText, attack.Options{
			Intensity: cfg.Intensity,
			Seed:      rng.Int63(),
		})
		if err != nil {
			o.finish(&result, state)
			return result, err
		}

		pred, err := o.predict(ctx, attacked.ModifiedText)
		if err != nil {
			metrics.ClassifierFailuresTotal.Inc()
			o.finish(&result, state)
			return result, err
		}

		reward := chainReward(state, pred, initial.Label, cfg.ConfidenceThreshold)
		result.Transitions = append(result.Transitions, Transition{
			Turn:             turn,
			Action:           action,
			LabelBefore:      state.Label,
			LabelAfter:       pred.Label,
			ConfidenceBefore: state.Confidence,
			ConfidenceAfter:  pred.Score,
			Reward:           reward,
		})
		result.TotalReward += reward

		state = State{
			CurrentText:    attacked.ModifiedText,
			Label:          pred.Label,
			Confidence:     pred.Score,
			AttackSequence: append(state.AttackSequence, action),
			TurnCount:      turn,
		}

		if pred.Label != initial.Label || pred.Score < cfg.ConfidenceThreshold {
			result.EvasionSucceeded = true
			metrics.EvasionsTotal.WithLabelValues(action).Inc()
			break
		}
	}

	o.finish(&result, state)
	metrics.ChainTurns.Observe(float64(result.TurnsNeeded))

	o.logger.WithFields(logrus.Fields{
		"evasion_succeeded": result.EvasionSucceeded,
		"turns_needed":      result.TurnsNeeded,
		"attack_chain":      result.AttackChain,
		"final_confidence":  result.FinalConfidence,
	}).Info("attack chain completed")

	return result, nil
}

func (o *Orchestrator) finish(result *ChainResult, state State) {
	result.FinalText = state.CurrentText
	result.FinalLabel = state.Label
	result.FinalConfidence = state.Confidence
	result.AttackChain = state.AttackSequence
	result.TurnsNeeded = state.TurnCount
}

// chainReward scores one transition: +1 for flipping the label, crossing the
// evasion threshold, or a large confidence drop; -1 when confidence moved
// against the attacker; 0 otherwise.
func chainReward(before State, after types.Prediction, initialLabel string, threshold float64) float64 {
	drop := before.Confidence - after.Score
	switch {
	case after.Label != initialLabel:
		return 1
	case after.Score < threshold:
		return 1
	case drop > 0.3:
		return 1
	case after.Score > before.Confidence:
		return -1
	default:
		return 0
	}
}
