// Package detector implements the blue-team analysis strategies. Text
// detectors run before inference on raw input; the confidence detector runs
// on the classifier output. Detectors never fail: empty or malformed input
// yields an untriggered detection.
package detector

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

const (
	HomographName          = "homograph_detection"
	ScriptMixingName       = "script_mixing_detection"
	EncodingAnomalyName    = "encoding_anomaly_detection"
	InjectionPatternName   = "injection_pattern_detection"
	SuspiciousLanguageName = "suspicious_language_detection"
	ConfidenceAnomalyName  = "confidence_anomaly_detection"
)

// TextDetector analyzes raw input text before inference.
type TextDetector interface {
	Name() string
	Detect(text string) types.ThreatDetection
}

// OutputDetector analyzes the classifier output after inference.
type OutputDetector interface {
	Name() string
	DetectOutput(pred types.Prediction) types.ThreatDetection
}

// Definition describes a registered detector for host introspection.
type Definition struct {
	UUID        string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var DetectorList = []Definition{
	{
		UUID:        GenerateDetectorUUID(HomographName),
		Name:        HomographName,
		Description: "Flags code points inside suspicious Unicode lookalike ranges",
	},
	{
		UUID:        GenerateDetectorUUID(ScriptMixingName),
		Name:        ScriptMixingName,
		Description: "Flags suspicious mixing of Cyrillic and Latin characters",
	},
	{
		UUID:        GenerateDetectorUUID(EncodingAnomalyName),
		Name:        EncodingAnomalyName,
		Description: "Flags percent-encoding, HTML entities and hex or unicode escapes",
	},
	{
		UUID:        GenerateDetectorUUID(InjectionPatternName),
		Name:        InjectionPatternName,
		Description: "Flags known directive keywords used in prompt injection",
	},
	{
		UUID:        GenerateDetectorUUID(SuspiciousLanguageName),
		Name:        SuspiciousLanguageName,
		Description: "Flags co-occurrence of more than two non-Latin scripts",
	},
	{
		UUID:        GenerateDetectorUUID(ConfidenceAnomalyName),
		Name:        ConfidenceAnomalyName,
		Description: "Flags classifier confidence outside the configured band",
	},
}

func GenerateDetectorUUID(name string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	id := uuid.NewSHA1(namespace, []byte("detector:"+name))
	return id.String()
}

// TextDetectors returns the pre-inference detectors in their pipeline order.
func TextDetectors(logger *logrus.Logger) []TextDetector {
	return []TextDetector{
		NewHomographDetector(logger),
		NewScriptMixingDetector(logger),
		NewEncodingAnomalyDetector(logger),
		NewInjectionPatternDetector(logger),
		NewSuspiciousLanguageDetector(logger),
	}
}

// untriggered is the result for empty or clean input.
func untriggered(name string) types.ThreatDetection {
	return types.ThreatDetection{
		DetectorName: name,
		Detected:     false,
		Severity:     types.SeverityNone,
	}
}
