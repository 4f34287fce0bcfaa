package attack

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// PromptInjection wraps the text in one directive template from the fixed
// list. Intensity gates whether the wrap happens at all.
type PromptInjection struct {
	logger *logrus.Logger
}

func NewPromptInjection(logger *logrus.Logger) Vector {
	return &PromptInjection{logger: logger}
}

func (v *PromptInjection) Name() string {
	return PromptInjectionName
}

func (v *PromptInjection) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", PromptInjectionName).Warn("empty text provided")
		return zeroEffect(PromptInjectionName, text, true)
	}

	rng := opts.rng()
	if rng.Float64() >= opts.clampedIntensity() {
		return zeroEffect(PromptInjectionName, text, false)
	}

	template := injectionTemplates[rng.Intn(len(injectionTemplates))]
	return types.AttackResult{
		AttackType:   PromptInjectionName,
		OriginalText: text,
		ModifiedText: fmt.Sprintf(template, text),
		Metadata: types.AttackMetadata{
			UnitsModified: 1,
			TotalUnits:    1,
			Ratio:         1,
			Extra: map[string]interface{}{
				"template": template,
			},
		},
	}
}
