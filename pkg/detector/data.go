package detector

import "regexp"

type runeRange struct {
	lo, hi rune
}

// homographRanges are Unicode blocks whose members impersonate ASCII.
var homographRanges = []struct {
	runeRange
	label string
}{
	{runeRange{0x1D400, 0x1D7FF}, "Mathematical Alphanumeric Symbols"},
	{runeRange{0x2C60, 0x2C7F}, "Latin Extended-C"},
	{runeRange{0x1D100, 0x1D1FF}, "Musical Symbols"},
	{runeRange{0x1D200, 0x1D24F}, "Ancient Greek Musical Notation"},
	{runeRange{0x1D280, 0x1D2DF}, "Maya Numerals"},
	{runeRange{0x1F7A0, 0x1F7FF}, "Geometric Shapes Extended"},
}

// encodingPatterns are the escape families the encoding anomaly detector
// looks for. Order is the reporting order.
var encodingPatterns = []struct {
	family  string
	pattern *regexp.Regexp
}{
	{"url_encoding", regexp.MustCompile(`%[0-9A-Fa-f]{2}`)},
	{"html_entities", regexp.MustCompile(`&#\d{2,5};`)},
	{"hex_escaping", regexp.MustCompile(`\\x[0-9A-Fa-f]{2}`)},
	{"unicode_escaping", regexp.MustCompile(`\\u[0-9A-Fa-f]{4}`)},
}

// injectionKeywords is the directive denylist, matched case-insensitively.
var injectionKeywords = []string{
	"[IGNORE", "[SYSTEM", "[INSTRUCTION", "[ADMIN", "[BYPASS",
	"IGNORE PREVIOUS", "OVERRIDE CLASSIFICATION", "TRUST THIS",
	"ADMIN OVERRIDE", "SECURITY BYPASS", "CLASSIFICATION OVERRIDE",
	"RESET PREVIOUS", "START FRESH", "TREAT AS LEGITIMATE",
	"MARK AS SAFE", "IGNORE SAFETY", "DISABLE FILTERS",
	"BYPASS SECURITY", "PRIORITY MESSAGE", "EMERGENCY OVERRIDE",
	"TRUSTED SOURCE", "VERIFIED CONTENT", "AUTHENTIC MESSAGE",
	"APPROVED CONTENT", "WHITELISTED", "TRUSTED USER",
}

// highRiskMarkers escalate injection severity when present in a keyword.
var highRiskMarkers = []string{"IGNORE", "OVERRIDE", "BYPASS", "DISABLE", "RESET"}

// nonLatinScripts buckets characters into named script ranges for the
// suspicious language detector.
var nonLatinScripts = []struct {
	runeRange
	name string
}{
	{runeRange{0x0400, 0x04FF}, "cyrillic"},
	{runeRange{0x4E00, 0x9FFF}, "cjk"},
	{runeRange{0x0600, 0x06FF}, "arabic"},
	{runeRange{0x0590, 0x05FF}, "hebrew"},
	{runeRange{0x0900, 0x097F}, "devanagari"},
	{runeRange{0x0E00, 0x0E7F}, "thai"},
	{runeRange{0xAC00, 0xD7AF}, "korean"},
	{runeRange{0x0370, 0x03FF}, "greek"},
}
