package detector

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/trustvector/adversary/pkg/types"
)

const homographSampleLimit = 5

// HomographDetector flags code points inside known lookalike Unicode ranges.
// Severity is HIGH when more than one character is flagged, MEDIUM otherwise.
type HomographDetector struct {
	logger *logrus.Logger
}

func NewHomographDetector(logger *logrus.Logger) TextDetector {
	return &HomographDetector{logger: logger}
}

func (d *HomographDetector) Name() string {
	return HomographName
}

func (d *HomographDetector) Detect(text string) types.ThreatDetection {
	if text == "" {
		return untriggered(HomographName)
	}

	var samples []map[string]interface{}
	flagged := 0

	for idx, r := range text {
		for _, hr := range homographRanges {
			if r < hr.lo || r > hr.hi {
				continue
			}
			flagged++
			if len(samples) < homographSampleLimit {
				sample := map[string]interface{}{
					"character":  string(r),
					"position":   idx,
					"code_point": fmt.Sprintf("U+%04X", r),
					"range":      hr.label,
				}
				// NFKC folds most mathematical lookalikes back to ASCII,
				// which names the character being impersonated.
				if folded := norm.NFKC.String(string(r)); folded != string(r) {
					sample["ascii_equivalent"] = folded
				}
				samples = append(samples, sample)
			}
			break
		}
	}

	if flagged == 0 {
		return untriggered(HomographName)
	}

	severity := types.SeverityMedium
	if flagged > 1 {
		severity = types.SeverityHigh
	}

	d.logger.WithFields(logrus.Fields{
		"detector": HomographName,
		"flagged":  flagged,
		"severity": severity.String(),
	}).Warn("homograph characters detected")

	return types.ThreatDetection{
		DetectorName: HomographName,
		Detected:     true,
		Severity:     severity,
		Details: map[string]interface{}{
			"character_count": flagged,
			"samples":         samples,
		},
	}
}
