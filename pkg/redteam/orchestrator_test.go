package redteam_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/redteam"
	"github.com/trustvector/adversary/pkg/types"
)

func TestDefaultPolicyBuckets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name       string
		confidence float64
		allowed    []string
	}{
		{
			name:       "high confidence gets character level noise",
			confidence: 0.9,
			allowed:    []string{attack.CharacterObfuscationName, attack.HomographSubstitutionName},
		},
		{
			name:       "mid confidence gets vocabulary substitution",
			confidence: 0.7,
			allowed:    []string{attack.SemanticShiftName},
		},
		{
			name:       "low confidence gets injection pressure",
			confidence: 0.3,
			allowed:    []string{attack.MultilingualInjectionName, attack.EncodingEvasionName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				action := redteam.DefaultPolicy(redteam.State{Confidence: tt.confidence}, rng)
				assert.Contains(t, tt.allowed, action)
			}
		})
	}
}

func TestRunChainExhaustsTurnsAgainstStubbornClassifier(t *testing.T) {
	constant := func(_ context.Context, _ string) (types.Prediction, error) {
		return types.Prediction{Label: types.LabelSpam, Score: 0.9}, nil
	}

	engine := redteam.NewEngine(testLogger())
	orchestrator := redteam.NewOrchestrator(testLogger(), engine, constant)

	cfg := redteam.DefaultChainConfig()
	cfg.MaxTurns = 5

	result, err := orchestrator.RunChain(context.Background(), "free prize here", cfg)
	require.NoError(t, err)

	assert.False(t, result.EvasionSucceeded)
	assert.Equal(t, 5, result.TurnsNeeded)
	assert.Len(t, result.Transitions, 5)
	assert.Len(t, result.AttackChain, 5)
	assert.Equal(t, types.LabelSpam, result.FinalLabel)
	assert.Equal(t, 0.9, result.FinalConfidence)
	assert.Zero(t, result.TotalReward)
}

func TestRunChainSucceedsOnLabelFlip(t *testing.T) {
	flipOnNonASCII := func(_ context.Context, text string) (types.Prediction, error) {
		for _, r := range text {
			if r > unicode.MaxASCII {
				return types.Prediction{Label: types.LabelNotSpam, Score: 0.8}, nil
			}
		}
		return types.Prediction{Label: types.LabelSpam, Score: 0.9}, nil
	}

	engine := redteam.NewEngine(testLogger())
	orchestrator := redteam.NewOrchestrator(testLogger(), engine, flipOnNonASCII)

	cfg := redteam.DefaultChainConfig()
	cfg.Intensity = 1.0

	result, err := orchestrator.RunChain(context.Background(), "free prize here", cfg)
	require.NoError(t, err)

	// Confidence 0.9 routes to a character-level vector, which introduces
	// non-ASCII on the first turn at full intensity.
	assert.True(t, result.EvasionSucceeded)
	assert.Equal(t, 1, result.TurnsNeeded)
	assert.Equal(t, types.LabelNotSpam, result.FinalLabel)
	assert.Equal(t, 1.0, result.TotalReward)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, types.LabelSpam, result.Transitions[0].LabelBefore)
	assert.Equal(t, types.LabelNotSpam, result.Transitions[0].LabelAfter)
}

func TestRunChainCustomPolicy(t *testing.T) {
	constant := func(_ context.Context, _ string) (types.Prediction, error) {
		return types.Prediction{Label: types.LabelSpam, Score: 0.9}, nil
	}

	engine := redteam.NewEngine(testLogger())
	orchestrator := redteam.NewOrchestrator(testLogger(), engine, constant)
	orchestrator.SetPolicy(func(_ redteam.State, _ *rand.Rand) string {
		return attack.PromptInjectionName
	})

	cfg := redteam.DefaultChainConfig()
	cfg.MaxTurns = 3
	cfg.Intensity = 1.0

	result, err := orchestrator.RunChain(context.Background(), "free prize", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{attack.PromptInjectionName, attack.PromptInjectionName, attack.PromptInjectionName}, result.AttackChain)
}

func TestRunChainDeterministic(t *testing.T) {
	cfg := redteam.DefaultChainConfig()
	cfg.Seed = 7

	run := func() redteam.ChainResult {
		engine := redteam.NewEngine(testLogger())
		orchestrator := redteam.NewOrchestrator(testLogger(), engine, asciiBoundClassifier)
		result, err := orchestrator.RunChain(context.Background(), "free prize here", cfg)
		require.NoError(t, err)
		return result
	}

	assert.Equal(t, run(), run())
}

func TestRunChainClassifierErrorIsTerminal(t *testing.T) {
	failing := func(_ context.Context, _ string) (types.Prediction, error) {
		return types.Prediction{}, errors.New("model offline")
	}

	engine := redteam.NewEngine(testLogger())
	orchestrator := redteam.NewOrchestrator(testLogger(), engine, failing)

	_, err := orchestrator.RunChain(context.Background(), "free prize", redteam.DefaultChainConfig())
	assert.ErrorContains(t, err, "model offline")
}

func TestRunChainCancellation(t *testing.T) {
	engine := redteam.NewEngine(testLogger())
	orchestrator := redteam.NewOrchestrator(testLogger(), engine, asciiBoundClassifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orchestrator.RunChain(ctx, "free prize", redteam.DefaultChainConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
