// Package vfo holds the client-side state of the panel's four virtual
// receivers and keeps it consistent: selecting a decoder and selecting a
// demodulator mode are mutually exclusive, and the bandwidth always matches
// the current mode/decoder pairing. All mutation goes through the Store,
// interested parties are notified through listener interfaces.
package vfo

import (
	"fmt"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/track"
)

// Count is the fixed number of VFOs. VFOs are numbered 1..Count, they are
// created at store initialization and never destroyed.
const Count = 4

// palette assigns each VFO its fixed display color.
var palette = [Count]string{"#e91e63", "#2196f3", "#4caf50", "#ff9800"}

// VFO is the complete state of one virtual receiver.
type VFO struct {
	Number int
	Name   string
	Color  string

	// Frequency in Hz, nil until the VFO is activated for the first time
	// and again after deactivation, so that reactivation recenters.
	Frequency *int
	Bandwidth int
	Mode      caps.Mode
	Decoder   caps.Decoder
	StepSize  int
	Volume    int // 0..100
	Squelch   int // dB, -150..0

	// LockedTransmitterID is the ID of the transmitter this VFO follows,
	// track.NoTransmitter if it is not locked. FrequencyOffset is applied
	// manually on top of the doppler-corrected downlink frequency.
	LockedTransmitterID string
	FrequencyOffset     int

	TranscriptionEnabled       bool
	TranscriptionLanguage      string
	TranscriptionTranslateTo   string
	TranscriptionFontSize      int
	TranscriptionTextAlignment string

	// Parameters holds the decoder tunables, keyed with the prefixed
	// parameter names (e.g. "lora_sf").
	Parameters        map[string]any
	ParametersEnabled bool
}

func (v VFO) copy() VFO {
	parameters := make(map[string]any, len(v.Parameters))
	for key, value := range v.Parameters {
		parameters[key] = value
	}
	v.Parameters = parameters
	return v
}

// Field identifies one property of a VFO in a change notification.
type Field string

const (
	FieldFrequency                  = Field("frequency")
	FieldBandwidth                  = Field("bandwidth")
	FieldMode                       = Field("mode")
	FieldDecoder                    = Field("decoder")
	FieldStepSize                   = Field("stepSize")
	FieldVolume                     = Field("volume")
	FieldSquelch                    = Field("squelch")
	FieldLockedTransmitterID        = Field("lockedTransmitterId")
	FieldFrequencyOffset            = Field("frequencyOffset")
	FieldTranscriptionEnabled       = Field("transcriptionEnabled")
	FieldTranscriptionLanguage      = Field("transcriptionLanguage")
	FieldTranscriptionTranslateTo   = Field("transcriptionTranslateTo")
	FieldTranscriptionFontSize      = Field("transcriptionFontSize")
	FieldTranscriptionTextAlignment = Field("transcriptionTextAlignment")
	FieldParameters                 = Field("parameters")
	FieldParametersEnabled          = Field("parametersEnabled")
)

// FieldSet is the set of fields touched by one change.
type FieldSet map[Field]bool

// Only indicates if the set contains exactly the given fields.
func (s FieldSet) Only(fields ...Field) bool {
	if len(s) != len(fields) {
		return false
	}
	for _, field := range fields {
		if !s[field] {
			return false
		}
	}
	return true
}

// Patch is a partial update of a VFO. Nil fields are left unchanged.
type Patch struct {
	Frequency                  *int
	Bandwidth                  *int
	Mode                       *caps.Mode
	Decoder                    *caps.Decoder
	StepSize                   *int
	Volume                     *int
	Squelch                    *int
	LockedTransmitterID        *string
	FrequencyOffset            *int
	TranscriptionEnabled       *bool
	TranscriptionLanguage      *string
	TranscriptionTranslateTo   *string
	TranscriptionFontSize      *int
	TranscriptionTextAlignment *string
	Parameters                 map[string]any
	ParametersEnabled          *bool
}

// deriveConsistent is the single place that enforces the mode/decoder
// mutual exclusion: a decoder other than "none" forces the mode to its
// override (ModeNone if it has no own override), an explicit mode selection
// resets the decoder. Every state-producing path (property patch, backend
// snapshot) goes through it.
func deriveConsistent(registry *caps.Registry, v VFO, modeTouched bool, decoderTouched bool) VFO {
	if decoderTouched && v.Decoder != caps.DecoderNone {
		override := registry.DecoderConfig(v.Decoder).OverrideDemodulator
		if override == "" {
			override = caps.ModeNone
		}
		v.Mode = override
	} else if modeTouched {
		v.Decoder = caps.DecoderNone
	}
	return v
}

// deriveBandwidth returns the default bandwidth of the given mode/decoder
// pairing: the decoder's default wins over the demodulator's.
func deriveBandwidth(registry *caps.Registry, mode caps.Mode, decoder caps.Decoder) int {
	bandwidth := 0
	if spec, ok := registry.DemodulatorConfig(mode); ok {
		bandwidth = spec.DefaultBandwidth
	}
	if decoder != caps.DecoderNone {
		if decoderDefault := registry.DecoderConfig(decoder).DefaultBandwidth; decoderDefault > 0 {
			bandwidth = decoderDefault
		}
	}
	return bandwidth
}

func newVFO(registry *caps.Registry, number int) VFO {
	mode := caps.ModeFM
	return VFO{
		Number:                     number,
		Name:                       vfoName(number),
		Color:                      palette[number-1],
		Frequency:                  nil,
		Bandwidth:                  deriveBandwidth(registry, mode, caps.DecoderNone),
		Mode:                       mode,
		Decoder:                    caps.DecoderNone,
		StepSize:                   1000,
		Volume:                     50,
		Squelch:                    -150,
		LockedTransmitterID:        track.NoTransmitter,
		FrequencyOffset:            0,
		TranscriptionLanguage:      "en",
		TranscriptionFontSize:      16,
		TranscriptionTextAlignment: "center",
		Parameters:                 registry.AllParameterDefaults(),
	}
}

func vfoName(number int) string {
	return fmt.Sprintf("VFO %d", number)
}
