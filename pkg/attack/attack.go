// Package attack implements the red-team text transformation vectors. Every
// vector is deterministic for a fixed seed and absorbs invalid input by
// returning a zero-effect result instead of failing.
package attack

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/trustvector/adversary/pkg/types"
)

// Vector names form a closed set; dispatch happens through the Registry
// lookup only.
const (
	CharacterObfuscationName  = "character_obfuscation"
	SemanticShiftName         = "semantic_shift"
	PromptInjectionName       = "prompt_injection"
	MultilingualInjectionName = "multilingual_injection"
	EncodingEvasionName       = "encoding_evasion"
	HomographSubstitutionName = "homograph_substitution"
)

// ErrUnknownVector is returned by Registry.Get for names outside the closed set.
var ErrUnknownVector = errors.New("unknown attack vector")

// Scheme selects the re-encoding family used by the encoding evasion vector.
type Scheme string

const (
	SchemeURL   Scheme = "url"
	SchemeHTML  Scheme = "html"
	SchemeHex   Scheme = "hex"
	SchemeMixed Scheme = "mixed"
)

// Options carries the per-execution knobs shared by all vectors. Intensity is
// a probability in [0,1]; Seed makes the run reproducible byte for byte.
type Options struct {
	Intensity float64 `mapstructure:"intensity"`
	Seed      int64   `mapstructure:"seed"`
	Scheme    Scheme  `mapstructure:"scheme"`
}

// DefaultOptions mirrors the engine configuration defaults.
func DefaultOptions() Options {
	return Options{
		Intensity: 0.3,
		Seed:      42,
		Scheme:    SchemeMixed,
	}
}

// DecodeOptions decodes a loose settings map into Options, filling defaults
// for missing keys.
func DecodeOptions(settings map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	if settings == nil {
		return opts, nil
	}
	if err := mapstructure.Decode(settings, &opts); err != nil {
		return opts, fmt.Errorf("failed to decode attack options: %w", err)
	}
	return opts, nil
}

func (o Options) rng() *rand.Rand {
	return rand.New(rand.NewSource(o.Seed))
}

func (o Options) clampedIntensity() float64 {
	switch {
	case o.Intensity < 0:
		return 0
	case o.Intensity > 1:
		return 1
	default:
		return o.Intensity
	}
}

// Vector is a single text transformation strategy.
type Vector interface {
	Name() string
	Execute(text string, opts Options) types.AttackResult
}

// Definition describes a registered vector, mirroring how plugins advertise
// themselves to the host.
type Definition struct {
	UUID        string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var VectorList = []Definition{
	{
		UUID:        GenerateVectorUUID(CharacterObfuscationName),
		Name:        CharacterObfuscationName,
		Description: "Substitutes Latin letters with visually identical Cyrillic code points",
	},
	{
		UUID:        GenerateVectorUUID(SemanticShiftName),
		Name:        SemanticShiftName,
		Description: "Replaces trigger phrases with synonyms that preserve intent",
	},
	{
		UUID:        GenerateVectorUUID(PromptInjectionName),
		Name:        PromptInjectionName,
		Description: "Wraps the text in a directive template that reframes classification context",
	},
	{
		UUID:        GenerateVectorUUID(MultilingualInjectionName),
		Name:        MultilingualInjectionName,
		Description: "Appends a foreign-language phrase carrying equivalent intent",
	},
	{
		UUID:        GenerateVectorUUID(EncodingEvasionName),
		Name:        EncodingEvasionName,
		Description: "Re-encodes tokens with percent, HTML entity or hex escape schemes",
	},
	{
		UUID:        GenerateVectorUUID(HomographSubstitutionName),
		Name:        HomographSubstitutionName,
		Description: "Replaces digits and letters with Unicode mathematical lookalikes",
	},
}

func GenerateVectorUUID(name string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	id := uuid.NewSHA1(namespace, []byte("attack:"+name))
	return id.String()
}

// Registry holds the closed set of vectors keyed by name.
type Registry struct {
	vectors map[string]Vector
}

func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		vectors: map[string]Vector{
			CharacterObfuscationName:  NewCharacterObfuscation(logger),
			SemanticShiftName:         NewSemanticShift(logger),
			PromptInjectionName:       NewPromptInjection(logger),
			MultilingualInjectionName: NewMultilingualInjection(logger),
			EncodingEvasionName:       NewEncodingEvasion(logger),
			HomographSubstitutionName: NewHomographSubstitution(logger),
		},
	}
}

func (r *Registry) Get(name string) (Vector, error) {
	vector, ok := r.vectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVector, name)
	}
	return vector, nil
}

// Names returns the registered vector names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.vectors))
	for name := range r.vectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// zeroEffect builds the no-op result used for invalid input and for
// executions whose gate never fired.
func zeroEffect(name, text string, invalid bool) types.AttackResult {
	return types.AttackResult{
		AttackType:   name,
		OriginalText: text,
		ModifiedText: text,
		Metadata: types.AttackMetadata{
			Error: invalid,
		},
	}
}
