package attack

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// HomographSubstitution replaces digits and letters with Unicode mathematical
// alphanumeric lookalikes, gated per character.
type HomographSubstitution struct {
	logger *logrus.Logger
}

func NewHomographSubstitution(logger *logrus.Logger) Vector {
	return &HomographSubstitution{logger: logger}
}

func (v *HomographSubstitution) Name() string {
	return HomographSubstitutionName
}

func (v *HomographSubstitution) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", HomographSubstitutionName).Warn("empty text provided")
		return zeroEffect(HomographSubstitutionName, text, true)
	}

	rng := opts.rng()
	intensity := opts.clampedIntensity()

	var b strings.Builder
	substituted := 0
	total := 0

	for _, r := range text {
		total++
		sub, ok := mathLookalikes[r]
		if !ok || rng.Float64() >= intensity {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(sub)
		substituted++
	}

	if substituted == 0 {
		return zeroEffect(HomographSubstitutionName, text, false)
	}

	return types.AttackResult{
		AttackType:   HomographSubstitutionName,
		OriginalText: text,
		ModifiedText: b.String(),
		Metadata: types.AttackMetadata{
			UnitsModified: substituted,
			TotalUnits:    total,
			Ratio:         float64(substituted) / float64(total),
		},
	}
}
