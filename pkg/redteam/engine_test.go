package redteam_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/redteam"
	"github.com/trustvector/adversary/pkg/types"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// asciiBoundClassifier confidently labels pure-ASCII text as SPAM and flips
// to NOT_SPAM as soon as any non-ASCII character appears.
func asciiBoundClassifier(_ context.Context, text string) (types.Prediction, error) {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return types.Prediction{Label: types.LabelNotSpam, Score: 0.9}, nil
		}
	}
	return types.Prediction{Label: types.LabelSpam, Score: 0.9}, nil
}

func TestExecuteAttackUnknownVector(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	_, err := engine.ExecuteAttack("sql_injection", "hello", attack.DefaultOptions())
	assert.ErrorIs(t, err, attack.ErrUnknownVector)
}

func TestExecuteAllCoversEveryVector(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	results := engine.ExecuteAll("URGENT! Click here to win a free prize now!", attack.DefaultOptions())
	require.Len(t, results, len(engine.AttackTypes()))
	for _, result := range results {
		assert.Equal(t, "URGENT! Click here to win a free prize now!", result.OriginalText)
	}
}

func TestTestModelRobustnessFullEvasion(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	cfg := redteam.DefaultRobustnessConfig()
	cfg.SamplesPerText = 4
	cfg.Intensity = 1.0
	cfg.AttackTypes = []string{attack.CharacterObfuscationName}

	texts := []string{"free prize here", "cheap excellent offer"}
	report, err := engine.TestModelRobustness(context.Background(), asciiBoundClassifier, texts, cfg)
	require.NoError(t, err)

	assert.Equal(t, 8, report.TotalAttacks)
	assert.Equal(t, 8, report.SuccessfulEvasions)
	assert.Equal(t, 1.0, report.EvasionRate)
	assert.Zero(t, report.FailedSamples)
	assert.Equal(t, 8, report.AttackHistogram[attack.CharacterObfuscationName])
	assert.Len(t, engine.History(), 8)
}

func TestTestModelRobustnessNoEvasion(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	// Prompt injection stays ASCII, so the classifier never flips and the
	// confidence never drops below the absolute floor.
	cfg := redteam.DefaultRobustnessConfig()
	cfg.SamplesPerText = 3
	cfg.Intensity = 1.0
	cfg.AttackTypes = []string{attack.PromptInjectionName}

	report, err := engine.TestModelRobustness(context.Background(), asciiBoundClassifier, []string{"free prize"}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalAttacks)
	assert.Zero(t, report.SuccessfulEvasions)
	assert.Zero(t, report.EvasionRate)
}

func TestTestModelRobustnessEvasionModes(t *testing.T) {
	// Same label either way; the score sags on modified text.
	saggingClassifier := func(_ context.Context, text string) (types.Prediction, error) {
		for _, r := range text {
			if r > unicode.MaxASCII {
				return types.Prediction{Label: types.LabelSpam, Score: 0.55}, nil
			}
		}
		return types.Prediction{Label: types.LabelSpam, Score: 0.95}, nil
	}

	base := redteam.DefaultRobustnessConfig()
	base.SamplesPerText = 2
	base.Intensity = 1.0
	base.ConfidenceDropThreshold = 0.3
	base.AttackTypes = []string{attack.CharacterObfuscationName}

	t.Run("absolute mode ignores the drop", func(t *testing.T) {
		engine := redteam.NewEngine(testLogger())
		cfg := base
		cfg.EvasionMode = redteam.EvasionModeAbsolute

		report, err := engine.TestModelRobustness(context.Background(), saggingClassifier, []string{"free prize"}, cfg)
		require.NoError(t, err)
		assert.Zero(t, report.SuccessfulEvasions)
	})

	t.Run("relative mode counts the drop", func(t *testing.T) {
		engine := redteam.NewEngine(testLogger())
		cfg := base
		cfg.EvasionMode = redteam.EvasionModeRelative

		report, err := engine.TestModelRobustness(context.Background(), saggingClassifier, []string{"free prize"}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, report.SuccessfulEvasions)
	})
}

func TestTestModelRobustnessPartialFailure(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	flaky := func(ctx context.Context, text string) (types.Prediction, error) {
		if strings.Contains(text, "broken") {
			return types.Prediction{}, errors.New("model offline")
		}
		return asciiBoundClassifier(ctx, text)
	}

	cfg := redteam.DefaultRobustnessConfig()
	cfg.SamplesPerText = 2
	cfg.Intensity = 1.0
	cfg.AttackTypes = []string{attack.CharacterObfuscationName}

	texts := []string{"free prize", "broken text", "cheap offer"}
	report, err := engine.TestModelRobustness(context.Background(), flaky, texts, cfg)
	require.NoError(t, err)

	// The broken text is excluded sample by sample; the rest of the batch
	// still completes.
	assert.Equal(t, 2, report.FailedSamples)
	assert.Equal(t, 4, report.TotalAttacks)
	assert.Equal(t, 4, report.SuccessfulEvasions)
}

func TestTestModelRobustnessDeterministic(t *testing.T) {
	cfg := redteam.DefaultRobustnessConfig()
	cfg.SamplesPerText = 5
	cfg.Seed = 99
	texts := []string{"free prize here", "click now to win"}

	first, err := redteam.NewEngine(testLogger()).TestModelRobustness(context.Background(), asciiBoundClassifier, texts, cfg)
	require.NoError(t, err)
	second, err := redteam.NewEngine(testLogger()).TestModelRobustness(context.Background(), asciiBoundClassifier, texts, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTestModelRobustnessCancellation(t *testing.T) {
	engine := redteam.NewEngine(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.TestModelRobustness(ctx, asciiBoundClassifier, []string{"free prize"}, redteam.DefaultRobustnessConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
