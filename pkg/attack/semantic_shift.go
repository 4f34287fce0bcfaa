package attack

import (
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// SemanticShift rewrites known trigger words into synonyms, preserving the
// original capitalization style.
type SemanticShift struct {
	logger *logrus.Logger
}

func NewSemanticShift(logger *logrus.Logger) Vector {
	return &SemanticShift{logger: logger}
}

func (v *SemanticShift) Name() string {
	return SemanticShiftName
}

func (v *SemanticShift) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", SemanticShiftName).Warn("empty text provided")
		return zeroEffect(SemanticShiftName, text, true)
	}

	rng := opts.rng()
	intensity := opts.clampedIntensity()

	words := strings.Fields(text)
	shifted := make([]string, 0, len(words))
	wordsModified := 0

	for _, word := range words {
		synonyms, ok := semanticShifts[strings.ToLower(word)]
		if !ok || rng.Float64() >= intensity {
			shifted = append(shifted, word)
			continue
		}
		replacement := synonyms[rng.Intn(len(synonyms))]
		shifted = append(shifted, matchCase(word, replacement))
		wordsModified++
	}

	if wordsModified == 0 {
		return zeroEffect(SemanticShiftName, text, false)
	}

	return types.AttackResult{
		AttackType:   SemanticShiftName,
		OriginalText: text,
		ModifiedText: strings.Join(shifted, " "),
		Metadata: types.AttackMetadata{
			UnitsModified: wordsModified,
			TotalUnits:    len(words),
			Ratio:         float64(wordsModified) / float64(len(words)),
		},
	}
}

// matchCase carries the source word's capitalization over to the replacement.
func matchCase(source, replacement string) string {
	if source == strings.ToUpper(source) && strings.ContainsFunc(source, unicode.IsLetter) {
		return strings.ToUpper(replacement)
	}
	runes := []rune(source)
	if len(runes) > 0 && unicode.IsUpper(runes[0]) {
		repl := []rune(replacement)
		repl[0] = unicode.ToUpper(repl[0])
		return string(repl)
	}
	return replacement
}
