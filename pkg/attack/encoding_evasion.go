package attack

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

var tokenPattern = regexp.MustCompile(`\w+|\W+`)

// EncodingEvasion re-encodes a fraction of alphabetic tokens with the
// caller-selected scheme. SchemeMixed picks a scheme per token.
type EncodingEvasion struct {
	logger *logrus.Logger
}

func NewEncodingEvasion(logger *logrus.Logger) Vector {
	return &EncodingEvasion{logger: logger}
}

func (v *EncodingEvasion) Name() string {
	return EncodingEvasionName
}

func (v *EncodingEvasion) Execute(text string, opts Options) types.AttackResult {
	if text == "" {
		v.logger.WithField("attack_type", EncodingEvasionName).Warn("empty text provided")
		return zeroEffect(EncodingEvasionName, text, true)
	}

	rng := opts.rng()
	intensity := opts.clampedIntensity()
	scheme := opts.Scheme
	if scheme == "" {
		scheme = SchemeMixed
	}

	tokens := tokenPattern.FindAllString(text, -1)
	var b strings.Builder
	charsEncoded := 0
	totalChars := 0

	for _, token := range tokens {
		runes := []rune(token)
		totalChars += len(runes)
		if !isAlphabetic(runes) || rng.Float64() >= intensity {
			b.WriteString(token)
			continue
		}

		effective := scheme
		if effective == SchemeMixed {
			effective = []Scheme{SchemeURL, SchemeHTML, SchemeHex}[rng.Intn(3)]
		}
		b.WriteString(encodeToken(token, effective))
		charsEncoded += len(runes)
	}

	if charsEncoded == 0 {
		return zeroEffect(EncodingEvasionName, text, false)
	}

	return types.AttackResult{
		AttackType:   EncodingEvasionName,
		OriginalText: text,
		ModifiedText: b.String(),
		Metadata: types.AttackMetadata{
			UnitsModified: charsEncoded,
			TotalUnits:    totalChars,
			Ratio:         float64(charsEncoded) / float64(totalChars),
			Extra: map[string]interface{}{
				"scheme": string(scheme),
			},
		},
	}
}

func isAlphabetic(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func encodeToken(token string, scheme Scheme) string {
	var b strings.Builder
	switch scheme {
	case SchemeURL:
		for _, byteValue := range []byte(token) {
			fmt.Fprintf(&b, "%%%02X", byteValue)
		}
	case SchemeHTML:
		for _, r := range token {
			fmt.Fprintf(&b, "&#%d;", r)
		}
	case SchemeHex:
		for _, r := range token {
			if r < 0x80 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		}
	default:
		return token
	}
	return b.String()
}
