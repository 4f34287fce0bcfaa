package detector

import (
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

const minScriptChars = 2

// ScriptMixingDetector flags text containing at least two Cyrillic and two
// Latin characters. Severity grows with the mixing ratio.
type ScriptMixingDetector struct {
	logger *logrus.Logger
}

func NewScriptMixingDetector(logger *logrus.Logger) TextDetector {
	return &ScriptMixingDetector{logger: logger}
}

func (d *ScriptMixingDetector) Name() string {
	return ScriptMixingName
}

func (d *ScriptMixingDetector) Detect(text string) types.ThreatDetection {
	if text == "" {
		return untriggered(ScriptMixingName)
	}

	var cyrillic, latin []rune
	for _, r := range text {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			cyrillic = append(cyrillic, r)
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin = append(latin, r)
		}
	}

	if len(cyrillic) < minScriptChars || len(latin) < minScriptChars {
		return untriggered(ScriptMixingName)
	}

	total := len(cyrillic) + len(latin)
	mixingRatio := float64(minInt(len(cyrillic), len(latin))) / float64(total)

	severity := types.SeverityLow
	switch {
	case mixingRatio > 0.5:
		severity = types.SeverityHigh
	case mixingRatio > 0.3:
		severity = types.SeverityMedium
	}

	d.logger.WithFields(logrus.Fields{
		"detector": ScriptMixingName,
		"cyrillic": len(cyrillic),
		"latin":    len(latin),
	}).Warn("script mixing detected")

	return types.ThreatDetection{
		DetectorName: ScriptMixingName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"cyrillic_count":   len(cyrillic),
			"latin_count":      len(latin),
			"cyrillic_samples": runeSamples(cyrillic, 5),
			"latin_samples":    runeSamples(latin, 5),
			"mixing_ratio":     mixingRatio,
		},
	}
}

func runeSamples(runes []rune, limit int) []string {
	if len(runes) > limit {
		runes = runes[:limit]
	}
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
