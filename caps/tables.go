package caps

import (
	"fmt"

	"github.com/ftl/rxpanel/track"
)

// DefaultRegistry returns the capability tables of the current backend.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultDemodulators(), defaultDecoders(), defaultParameters())
}

func defaultDemodulators() map[Mode]DemodulatorSpec {
	return map[Mode]DemodulatorSpec{
		ModeFM: {
			DefaultBandwidth:   10000,
			MinBandwidth:       5000,
			MaxBandwidth:       40000,
			BandwidthType:      DoubleSided,
			ShowBothEdges:      true,
			AllowLeftEdgeDrag:  true,
			AllowRightEdgeDrag: true,
		},
		ModeAM: {
			DefaultBandwidth:   6000,
			MinBandwidth:       2000,
			MaxBandwidth:       12000,
			BandwidthType:      DoubleSided,
			ShowBothEdges:      true,
			AllowLeftEdgeDrag:  true,
			AllowRightEdgeDrag: true,
		},
		ModeUSB: {
			DefaultBandwidth:   3000,
			MinBandwidth:       500,
			MaxBandwidth:       10000,
			BandwidthType:      SingleSidedUpper,
			AllowRightEdgeDrag: true,
		},
		ModeLSB: {
			DefaultBandwidth:  3000,
			MinBandwidth:      500,
			MaxBandwidth:      10000,
			BandwidthType:     SingleSidedLower,
			AllowLeftEdgeDrag: true,
		},
		ModeCW: {
			DefaultBandwidth:   500,
			MinBandwidth:       50,
			MaxBandwidth:       1000,
			BandwidthType:      DoubleSided,
			ShowBothEdges:      true,
			AllowLeftEdgeDrag:  true,
			AllowRightEdgeDrag: true,
			BandwidthLabel: func(hz int) string {
				return fmt.Sprintf("%dHz", hz)
			},
		},
		ModeNone: {
			BandwidthType:   CenterOnly,
			LockedBandwidth: true,
		},
	}
}

func defaultDecoders() map[Decoder]DecoderSpec {
	return map[Decoder]DecoderSpec{
		DecoderSSTV: {
			RequiresDemodulator: ModeFM,
			OverrideDemodulator: ModeFM,
			DefaultBandwidth:    15000,
			BandwidthType:       DoubleSided,
			ShowBothEdges:       true,
			HasStatusDisplay:    true,
			HasProgressDisplay:  true,
			HasModeDisplay:      true,
		},
		DecoderWeather: {
			RequiresDemodulator: ModeFM,
			OverrideDemodulator: ModeFM,
			DefaultBandwidth:    40000,
			BandwidthType:       DoubleSided,
			ShowBothEdges:       true,
			LockedBandwidth:     true,
			HasStatusDisplay:    true,
			HasProgressDisplay:  true,
		},
		DecoderMorse: {
			RequiresDemodulator: ModeCW,
			OverrideDemodulator: ModeCW,
			BandwidthType:       DoubleSided,
			ShowBothEdges:       true,
			HasTextOutput:       true,
			BandwidthLabel: func(hz int) string {
				return fmt.Sprintf("%dHz", hz)
			},
		},
		DecoderLoRa: {
			RequiresDemodulator: ModeNone,
			OverrideDemodulator: ModeNone,
			DefaultBandwidth:    500000,
			BandwidthType:       CenterOnly,
			LockedBandwidth:     true,
			HasStatusDisplay:    true,
			HasTextOutput:       true,
			CalculateBandwidth:  baudBandwidth(500000),
		},
		DecoderGMSK: {
			RequiresDemodulator: ModeNone,
			OverrideDemodulator: ModeNone,
			DefaultBandwidth:    20000,
			BandwidthType:       CenterOnly,
			LockedBandwidth:     true,
			HasStatusDisplay:    true,
			HasTextOutput:       true,
			CalculateBandwidth:  baudBandwidth(20000),
		},
		DecoderNone: {
			BandwidthType: DoubleSided,
		},
	}
}

// baudBandwidth derives the bandwidth from the transmitter's baud rate with
// a 3x margin for doppler shift, falling back to the given default when the
// baud rate is unknown.
func baudBandwidth(fallback int) func(transmitter track.Transmitter) int {
	return func(transmitter track.Transmitter) int {
		if transmitter.Baud <= 0 {
			return fallback
		}
		return int(transmitter.Baud * 3)
	}
}

func defaultParameters() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		"lora_sf": {
			Type:    ParameterSelect,
			Default: "7",
			Options: []ParameterOption{
				{Value: "7", Label: "SF7"},
				{Value: "8", Label: "SF8"},
				{Value: "9", Label: "SF9"},
				{Value: "10", Label: "SF10"},
				{Value: "11", Label: "SF11"},
				{Value: "12", Label: "SF12"},
			},
			Label:       "Spreading Factor",
			Description: "Chirp spreading factor of the LoRa transmission.",
		},
		"lora_cr": {
			Type:    ParameterSelect,
			Default: "4/5",
			Options: []ParameterOption{
				{Value: "4/5", Label: "4/5"},
				{Value: "4/6", Label: "4/6"},
				{Value: "4/7", Label: "4/7"},
				{Value: "4/8", Label: "4/8"},
			},
			Label:       "Coding Rate",
			Description: "Forward error correction coding rate.",
		},
		"lora_sync_word": {
			Type:    ParameterSelect,
			Default: "public",
			Options: []ParameterOption{
				{Value: "public", Label: "Public (0x34)"},
				{Value: "private", Label: "Private (0x12)"},
			},
			Label:       "Sync Word",
			Description: "Network sync word of the LoRa transmission.",
		},
		"lora_ldro": {
			Type:        ParameterSwitch,
			Default:     false,
			Label:       "Low Data Rate Optimization",
			Description: "Enable LDRO for long spreading factors.",
		},
		"gmsk_deviation": {
			Type:    ParameterSelect,
			Default: "5000",
			Options: []ParameterOption{
				{Value: "2400", Label: "2.4 kHz"},
				{Value: "5000", Label: "5 kHz"},
			},
			Label:       "Deviation",
			Description: "Frequency deviation of the GMSK transmission.",
		},
	}
}
