package attack

import (
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// MultilingualInjection appends a foreign-language phrase carrying the same
// call-to-action intent. Intensity is the insertion probability.
type MultilingualInjection struct {
	logger *logrus.Logger
}

func NewMultilingualInjection(logger *logrus.Logger) Vector {
	return &MultilingualInjection{logger: logger}
}

func (v *MultilingualInjection) Name() string {
	return MultilingualInjectionName
}

func (v *MultilingualInjection) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", MultilingualInjectionName).Warn("empty text provided")
		return zeroEffect(MultilingualInjectionName, text, true)
	}

	rng := opts.rng()
	if rng.Float64() >= opts.clampedIntensity() {
		return zeroEffect(MultilingualInjectionName, text, false)
	}

	language := multilingualLanguages[rng.Intn(len(multilingualLanguages))]
	phrases := multilingualPhrases[language]
	phrase := phrases[rng.Intn(len(phrases))]

	return types.AttackResult{
		AttackType:   MultilingualInjectionName,
		OriginalText: text,
		ModifiedText: text + " " + phrase,
		Metadata: types.AttackMetadata{
			UnitsModified: 1,
			TotalUnits:    1,
			Ratio:         1,
			Extra: map[string]interface{}{
				"language": language,
				"phrase":   phrase,
			},
		},
	}
}
