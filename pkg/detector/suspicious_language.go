package detector

import (
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// SuspiciousLanguageDetector buckets characters into named non-Latin script
// ranges and flags text where more than two distinct scripts co-occur.
type SuspiciousLanguageDetector struct {
	logger *logrus.Logger
}

func NewSuspiciousLanguageDetector(logger *logrus.Logger) TextDetector {
	return &SuspiciousLanguageDetector{logger: logger}
}

func (d *SuspiciousLanguageDetector) Name() string {
	return SuspiciousLanguageName
}

func (d *SuspiciousLanguageDetector) Detect(text string) types.ThreatDetection {
	if text == "" {
		return untriggered(SuspiciousLanguageName)
	}

	seen := map[string][]rune{}
	for _, r := range text {
		for _, script := range nonLatinScripts {
			if r >= script.lo && r <= script.hi {
				seen[script.name] = append(seen[script.name], r)
				break
			}
		}
	}

	// More than two distinct non-Latin scripts is the trigger; one or two is
	// ordinary multilingual content.
	if len(seen) <= 2 {
		return untriggered(SuspiciousLanguageName)
	}

	severity := types.SeverityHigh
	if len(seen) >= 4 {
		severity = types.SeverityCritical
	}

	scripts := make([]string, 0, len(seen))
	samples := map[string]interface{}{}
	for _, script := range nonLatinScripts {
		chars, ok := seen[script.name]
		if !ok {
			continue
		}
		scripts = append(scripts, script.name)
		samples[script.name] = runeSamples(uniqueRunes(chars), 10)
	}

	d.logger.WithFields(logrus.Fields{
		"detector": SuspiciousLanguageName,
		"scripts":  len(scripts),
	}).Warn("suspicious language mixing detected")

	return types.ThreatDetection{
		DetectorName: SuspiciousLanguageName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"unique_script_count": len(scripts),
			"scripts":             scripts,
			"samples":             samples,
		},
	}
}

func uniqueRunes(runes []rune) []rune {
	seen := map[rune]struct{}{}
	out := runes[:0:0]
	for _, r := range runes {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
