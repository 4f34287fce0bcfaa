package attack

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// CharacterObfuscation swaps Latin letters for Cyrillic lookalikes. Selection
// is gated per word: a selected word has every eligible letter substituted.
type CharacterObfuscation struct {
	logger *logrus.Logger
}

func NewCharacterObfuscation(logger *logrus.Logger) Vector {
	return &CharacterObfuscation{logger: logger}
}

func (v *CharacterObfuscation) Name() string {
	return CharacterObfuscationName
}

func (v *CharacterObfuscation) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", CharacterObfuscationName).Warn("empty text provided")
		return zeroEffect(CharacterObfuscationName, text, true)
	}

	rng := opts.rng()
	intensity := opts.clampedIntensity()

	words := strings.Fields(text)
	obfuscated := make([]string, 0, len(words))
	charsModified := 0

	for _, word := range words {
		if rng.Float64() >= intensity {
			obfuscated = append(obfuscated, word)
			continue
		}
		var b strings.Builder
		for _, r := range word {
			if sub, ok := cyrillicLookalikes[r]; ok {
				b.WriteRune(sub)
				charsModified++
			} else {
				b.WriteRune(r)
			}
		}
		obfuscated = append(obfuscated, b.String())
	}

	if charsModified == 0 {
		return zeroEffect(CharacterObfuscationName, text, false)
	}

	totalChars := len([]rune(text))
	return types.AttackResult{
		AttackType:   CharacterObfuscationName,
		OriginalText: text,
		ModifiedText: strings.Join(obfuscated, " "),
		Metadata: types.AttackMetadata{
			UnitsModified: charsModified,
			TotalUnits:    totalChars,
			Ratio:         float64(charsModified) / float64(totalChars),
		},
	}
}
