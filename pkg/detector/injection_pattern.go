package detector

import (
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

const injectionSampleLimit = 5

// InjectionPatternDetector matches the fixed directive-keyword denylist
// case-insensitively and escalates when override-style keywords appear.
type InjectionPatternDetector struct {
	logger *logrus.Logger
}

func NewInjectionPatternDetector(logger *logrus.Logger) TextDetector {
	return &InjectionPatternDetector{logger: logger}
}

func (d *InjectionPatternDetector) Name() string {
	return InjectionPatternName
}

func (d *InjectionPatternDetector) Detect(text string) types.ThreatDetection {
	if text == "" {
		return untriggered(InjectionPatternName)
	}

	upper := strings.ToUpper(text)
	var hits []map[string]interface{}
	highRisk := 0

	for _, keyword := range injectionKeywords {
		start := 0
		for {
			pos := strings.Index(upper[start:], keyword)
			if pos < 0 {
				break
			}
			pos += start
			if len(hits) < injectionSampleLimit {
				hits = append(hits, map[string]interface{}{
					"keyword":  keyword,
					"position": pos,
					"context":  keywordContext(text, pos, len(keyword)),
				})
			}
			if isHighRisk(keyword) {
				highRisk++
			}
			start = pos + 1
		}
	}

	if len(hits) == 0 && highRisk == 0 {
		return untriggered(InjectionPatternName)
	}

	keywordCount := countKeywordHits(upper)
	severity := types.SeverityLow
	switch {
	case highRisk >= 3:
		severity = types.SeverityCritical
	case highRisk >= 1 || keywordCount >= 5:
		severity = types.SeverityHigh
	case keywordCount >= 2:
		severity = types.SeverityMedium
	}

	d.logger.WithFields(logrus.Fields{
		"detector":  InjectionPatternName,
		"keywords":  keywordCount,
		"high_risk": highRisk,
	}).Warn("injection patterns detected")

	return types.ThreatDetection{
		DetectorName: InjectionPatternName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"keyword_count":      keywordCount,
			"high_risk_keywords": highRisk,
			"samples":            hits,
		},
	}
}

func countKeywordHits(upper string) int {
	count := 0
	for _, keyword := range injectionKeywords {
		count += strings.Count(upper, keyword)
	}
	return count
}

func isHighRisk(keyword string) bool {
	for _, marker := range highRiskMarkers {
		if strings.Contains(keyword, marker) {
			return true
		}
	}
	return false
}

func keywordContext(text string, pos, length int) string {
	start := pos - 20
	if start < 0 {
		start = 0
	}
	end := pos + length + 20
	if end > len(text) {
		end = len(text)
	}
	// The window is byte-based; pull both edges back onto rune boundaries so
	// the sample never carries a split multi-byte character.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}
