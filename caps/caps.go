// Package caps describes the receiver capabilities of the backend: the
// available demodulator modes and decoders, their bandwidth limits and
// display behavior, and the per-decoder tunable parameters. All lookups are
// total - unknown keys degrade to a safe default instead of failing, since
// the registry is consulted on every render.
package caps

import (
	"fmt"
	"strings"

	"github.com/ftl/rxpanel/track"
)

// Mode represents a demodulator mode.
type Mode string

// All demodulator modes known to the backend.
const (
	ModeNone = Mode("none")
	ModeFM   = Mode("FM")
	ModeAM   = Mode("AM")
	ModeUSB  = Mode("USB")
	ModeLSB  = Mode("LSB")
	ModeCW   = Mode("CW")
)

// NormalizeMode maps the legacy spelling of the "no audio demodulation" mode
// to its canonical lowercase form. Backend snapshots may still use either.
func NormalizeMode(mode Mode) Mode {
	if strings.EqualFold(string(mode), string(ModeNone)) {
		return ModeNone
	}
	return mode
}

// Decoder represents a digital decoder.
type Decoder string

// All decoders known to the backend.
const (
	DecoderNone    = Decoder("none")
	DecoderSSTV    = Decoder("sstv")
	DecoderMorse   = Decoder("morse")
	DecoderLoRa    = Decoder("lora")
	DecoderGMSK    = Decoder("gmsk")
	DecoderWeather = Decoder("weather")
)

// BandwidthType describes how a passband relates to the tuning frequency.
type BandwidthType string

const (
	DoubleSided      = BandwidthType("double-sided")
	SingleSidedUpper = BandwidthType("single-sided-upper")
	SingleSidedLower = BandwidthType("single-sided-lower")
	CenterOnly       = BandwidthType("center-only")
)

// DemodulatorSpec describes one demodulator mode. Bandwidths are in Hz,
// MinBandwidth <= DefaultBandwidth <= MaxBandwidth holds for every spec.
type DemodulatorSpec struct {
	DefaultBandwidth   int
	MinBandwidth       int
	MaxBandwidth       int
	BandwidthType      BandwidthType
	ShowBothEdges      bool
	AllowLeftEdgeDrag  bool
	AllowRightEdgeDrag bool
	LockedBandwidth    bool

	// BandwidthLabel formats a bandwidth for display, nil for the generic
	// kHz formatting.
	BandwidthLabel func(hz int) string
}

// DecoderSpec describes one decoder.
type DecoderSpec struct {
	// RequiresDemodulator is the demodulator mode this decoder needs,
	// ModeNone if it consumes raw IQ directly.
	RequiresDemodulator Mode
	// OverrideDemodulator is the mode that is forced when this decoder is
	// selected, "" if the decoder does not override the mode. ModeNone
	// disables audio demodulation entirely.
	OverrideDemodulator Mode
	// DefaultBandwidth in Hz, 0 if the decoder does not define one.
	DefaultBandwidth int

	BandwidthType      BandwidthType
	ShowBothEdges      bool
	AllowLeftEdgeDrag  bool
	AllowRightEdgeDrag bool
	LockedBandwidth    bool

	HasStatusDisplay   bool
	HasProgressDisplay bool
	HasTextOutput      bool
	HasModeDisplay     bool

	// BandwidthLabel formats a bandwidth for display, nil for the generic
	// kHz formatting.
	BandwidthLabel func(hz int) string
	// CalculateBandwidth derives the bandwidth from an external
	// transmitter's baud rate or mode, nil if the decoder has no such rule.
	CalculateBandwidth func(transmitter track.Transmitter) int
}

// ParameterType describes how a decoder parameter is rendered.
type ParameterType string

const (
	ParameterSelect = ParameterType("select")
	ParameterSwitch = ParameterType("switch")
)

// ParameterOption is one choice of a select parameter.
type ParameterOption struct {
	Value string
	Label string
}

// ParameterSpec describes one decoder parameter. Parameters are keyed with
// the decoder name as prefix, e.g. "lora_sf".
type ParameterSpec struct {
	Type        ParameterType
	Default     any
	Options     []ParameterOption
	Label       string
	Description string
}

// Registry is an immutable set of capability tables. It is constructed once
// (see DefaultRegistry) and injected into the store and the relay.
type Registry struct {
	demodulators map[Mode]DemodulatorSpec
	decoders     map[Decoder]DecoderSpec
	parameters   map[string]ParameterSpec
}

// NewRegistry creates a registry with the given capability tables. The maps
// are used as given, they must not be modified afterwards.
func NewRegistry(demodulators map[Mode]DemodulatorSpec, decoders map[Decoder]DecoderSpec, parameters map[string]ParameterSpec) *Registry {
	return &Registry{
		demodulators: demodulators,
		decoders:     decoders,
		parameters:   parameters,
	}
}

// DemodulatorConfig returns the spec of the given demodulator mode. The
// second return value is false for unknown modes.
func (r *Registry) DemodulatorConfig(mode Mode) (DemodulatorSpec, bool) {
	spec, ok := r.demodulators[NormalizeMode(mode)]
	return spec, ok
}

// DecoderConfig returns the spec of the given decoder. Unknown decoders
// fall back to the "none" spec, this never fails.
func (r *Registry) DecoderConfig(decoder Decoder) DecoderSpec {
	spec, ok := r.decoders[decoder]
	if !ok {
		return r.decoders[DecoderNone]
	}
	return spec
}

// LockedBandwidth indicates if the bandwidth is fixed for the given
// mode/decoder pairing. An active decoder takes precedence over the
// demodulator.
func (r *Registry) LockedBandwidth(mode Mode, decoder Decoder) bool {
	if decoder != DecoderNone {
		return r.DecoderConfig(decoder).LockedBandwidth
	}
	spec, ok := r.DemodulatorConfig(mode)
	return ok && spec.LockedBandwidth
}

// CenterLineOnly indicates if only the center line should be shown instead
// of a passband for the given mode/decoder pairing.
func (r *Registry) CenterLineOnly(mode Mode, decoder Decoder) bool {
	if decoder != DecoderNone {
		return r.DecoderConfig(decoder).BandwidthType == CenterOnly
	}
	spec, ok := r.DemodulatorConfig(mode)
	return ok && spec.BandwidthType == CenterOnly
}

// EffectiveMode resolves the demodulator mode that is actually in effect:
// an override reported by a live decoder session wins, then the override of
// the configured decoder, then the configured mode itself.
func (r *Registry) EffectiveMode(mode Mode, decoder Decoder, activeOverride Mode) Mode {
	if activeOverride != "" {
		return activeOverride
	}
	if decoder != DecoderNone {
		if override := r.DecoderConfig(decoder).OverrideDemodulator; override != "" {
			return override
		}
	}
	return mode
}

// FormatBandwidthLabel formats the given bandwidth for display. The
// decoder's label function takes precedence over the demodulator's, the
// generic kHz formatting is the fallback.
func (r *Registry) FormatBandwidthLabel(mode Mode, bandwidth int, decoder Decoder) string {
	if decoder != DecoderNone {
		if label := r.DecoderConfig(decoder).BandwidthLabel; label != nil {
			return label(bandwidth)
		}
	}
	if spec, ok := r.DemodulatorConfig(mode); ok && spec.BandwidthLabel != nil {
		return spec.BandwidthLabel(bandwidth)
	}
	return genericBandwidthLabel(bandwidth)
}

// DecoderParameters returns the parameter specs of the given decoder, keyed
// with the prefixed parameter names.
func (r *Registry) DecoderParameters(decoder Decoder) map[string]ParameterSpec {
	prefix := string(decoder) + "_"
	result := make(map[string]ParameterSpec)
	for key, spec := range r.parameters {
		if strings.HasPrefix(key, prefix) {
			result[key] = spec
		}
	}
	return result
}

// DecoderDefaultParameters returns the default values of the given
// decoder's parameters, keyed with the prefixed parameter names.
func (r *Registry) DecoderDefaultParameters(decoder Decoder) map[string]any {
	result := make(map[string]any)
	for key, spec := range r.DecoderParameters(decoder) {
		result[key] = spec.Default
	}
	return result
}

// AllParameterDefaults returns the default values of all known decoder
// parameters, keyed with the prefixed parameter names.
func (r *Registry) AllParameterDefaults() map[string]any {
	result := make(map[string]any, len(r.parameters))
	for key, spec := range r.parameters {
		result[key] = spec.Default
	}
	return result
}

// MapParametersToBackend translates prefixed parameter names into the field
// names the backend expects. Only the LoRa mapping is defined, all other
// decoders do not transfer any parameters yet.
func (r *Registry) MapParametersToBackend(decoder Decoder, parameters map[string]any) map[string]any {
	result := make(map[string]any)
	switch decoder {
	case DecoderLoRa:
		prefix := string(decoder) + "_"
		for key, value := range parameters {
			if strings.HasPrefix(key, prefix) {
				result[strings.TrimPrefix(key, prefix)] = value
			}
		}
	}
	return result
}

func genericBandwidthLabel(hz int) string {
	return fmt.Sprintf("%.1fkHz", float64(hz)/1000.0)
}
