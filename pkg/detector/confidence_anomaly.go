package detector

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

const (
	anomalyLowConfidence     = "LOW_CONFIDENCE"
	anomalyHighConfidence    = "HIGH_CONFIDENCE"
	anomalyNeutralConfidence = "NEUTRAL_CONFIDENCE"
)

// Band is the confidence interval considered normal for a binary classifier.
type Band struct {
	Low  float64 `mapstructure:"low"`
	High float64 `mapstructure:"high"`
}

func DefaultBand() Band {
	return Band{Low: 0.2, High: 0.95}
}

// ConfidenceAnomalyDetector operates on classifier output rather than raw
// text. It flags scores outside the configured band and, additionally, near
// total uncertainty around 0.5.
type ConfidenceAnomalyDetector struct {
	logger *logrus.Logger
	band   Band
}

func NewConfidenceAnomalyDetector(logger *logrus.Logger, band Band) OutputDetector {
	if band.High <= band.Low {
		band = DefaultBand()
	}
	return &ConfidenceAnomalyDetector{logger: logger, band: band}
}

func (d *ConfidenceAnomalyDetector) Name() string {
	return ConfidenceAnomalyName
}

func (d *ConfidenceAnomalyDetector) DetectOutput(pred types.Prediction) types.ThreatDetection {
	confidence := pred.Score

	var anomalyType, description string
	switch {
	case confidence < d.band.Low:
		anomalyType = anomalyLowConfidence
		description = fmt.Sprintf("unusually low confidence: %.3f", confidence)
	case confidence > d.band.High:
		anomalyType = anomalyHighConfidence
		description = fmt.Sprintf("unusually high confidence: %.3f", confidence)
	case confidence >= 0.45 && confidence <= 0.55:
		anomalyType = anomalyNeutralConfidence
		description = fmt.Sprintf("model uncertainty near 0.5: %.3f", confidence)
	default:
		return untriggered(ConfidenceAnomalyName)
	}

	severity := d.grade(anomalyType, confidence)

	d.logger.WithFields(logrus.Fields{
		"detector":     ConfidenceAnomalyName,
		"anomaly_type": anomalyType,
		"score":        confidence,
	}).Warn("confidence anomaly detected")

	return types.ThreatDetection{
		DetectorName: ConfidenceAnomalyName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"anomaly_type": anomalyType,
			"score":        confidence,
			"label":        pred.Label,
			"description":  description,
		},
	}
}

// grade scales severity by how far outside the band the score fell. The
// neutral-uncertainty case is always LOW.
func (d *ConfidenceAnomalyDetector) grade(anomalyType string, confidence float64) types.Severity {
	var distance float64
	switch anomalyType {
	case anomalyLowConfidence:
		distance = (d.band.Low - confidence) / d.band.Low
	case anomalyHighConfidence:
		distance = (confidence - d.band.High) / (1.0 - d.band.High)
	default:
		return types.SeverityLow
	}

	switch {
	case distance > 0.6:
		return types.SeverityHigh
	case distance > 0.4:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}
