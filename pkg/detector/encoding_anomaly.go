package detector

import (
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// EncodingAnomalyDetector flags escape-sequence families (percent encoding,
// HTML numeric entities, hex and unicode escapes) with per-family counts.
type EncodingAnomalyDetector struct {
	logger *logrus.Logger
}

func NewEncodingAnomalyDetector(logger *logrus.Logger) TextDetector {
	return &EncodingAnomalyDetector{logger: logger}
}

func (d *EncodingAnomalyDetector) Name() string {
	return EncodingAnomalyName
}

func (d *EncodingAnomalyDetector) Detect(text string) types.ThreatDetection {
	if text == "" {
		return untriggered(EncodingAnomalyName)
	}

	families := map[string]interface{}{}
	var familyNames []string
	total := 0

	for _, ep := range encodingPatterns {
		matches := ep.pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		samples := matches
		if len(samples) > 3 {
			samples = samples[:3]
		}
		families[ep.family] = map[string]interface{}{
			"count":   len(matches),
			"samples": samples,
		}
		familyNames = append(familyNames, ep.family)
		total += len(matches)
	}

	if total == 0 {
		return untriggered(EncodingAnomalyName)
	}

	severity := types.SeverityLow
	switch {
	case total >= 10:
		severity = types.SeverityCritical
	case total >= 5:
		severity = types.SeverityHigh
	case total >= 2:
		severity = types.SeverityMedium
	}

	d.logger.WithFields(logrus.Fields{
		"detector":  EncodingAnomalyName,
		"anomalies": total,
	}).Warn("encoding anomalies detected")

	return types.ThreatDetection{
		DetectorName: EncodingAnomalyName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"total_anomalies": total,
			"families":        familyNames,
			"detections":      families,
		},
	}
}
