package caps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/rxpanel/track"
)

func TestDemodulatorBandwidthInvariant(t *testing.T) {
	for mode, spec := range defaultDemodulators() {
		assert.LessOrEqual(t, spec.MinBandwidth, spec.DefaultBandwidth, "mode %s", mode)
		assert.LessOrEqual(t, spec.DefaultBandwidth, spec.MaxBandwidth, "mode %s", mode)
	}
}

func TestDemodulatorConfig(t *testing.T) {
	registry := DefaultRegistry()

	spec, ok := registry.DemodulatorConfig(ModeUSB)
	require.True(t, ok)
	assert.Equal(t, 3000, spec.DefaultBandwidth)

	_, ok = registry.DemodulatorConfig(Mode("quadrature"))
	assert.False(t, ok)
}

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, ModeNone, NormalizeMode(Mode("NONE")))
	assert.Equal(t, ModeNone, NormalizeMode(Mode("none")))
	assert.Equal(t, ModeFM, NormalizeMode(ModeFM))
}

func TestDecoderConfigFallsBackToNone(t *testing.T) {
	registry := DefaultRegistry()

	spec := registry.DecoderConfig(Decoder("rtty"))
	assert.Equal(t, registry.DecoderConfig(DecoderNone), spec)
}

func TestEffectiveMode(t *testing.T) {
	registry := DefaultRegistry()
	tt := []struct {
		desc           string
		mode           Mode
		decoder        Decoder
		activeOverride Mode
		expected       Mode
	}{
		{desc: "plain mode", mode: ModeUSB, decoder: DecoderNone, expected: ModeUSB},
		{desc: "decoder override", mode: ModeUSB, decoder: DecoderLoRa, expected: ModeNone},
		{desc: "decoder override to FM", mode: ModeUSB, decoder: DecoderSSTV, expected: ModeFM},
		{desc: "live session override wins", mode: ModeUSB, decoder: DecoderSSTV, activeOverride: ModeAM, expected: ModeAM},
		{desc: "unknown decoder keeps mode", mode: ModeCW, decoder: Decoder("rtty"), expected: ModeCW},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, registry.EffectiveMode(tc.mode, tc.decoder, tc.activeOverride))
		})
	}
}

func TestLockedBandwidth(t *testing.T) {
	registry := DefaultRegistry()

	assert.True(t, registry.LockedBandwidth(ModeUSB, DecoderLoRa), "decoder takes precedence")
	assert.False(t, registry.LockedBandwidth(ModeNone, DecoderSSTV), "decoder takes precedence over locked mode")
	assert.True(t, registry.LockedBandwidth(ModeNone, DecoderNone))
	assert.False(t, registry.LockedBandwidth(ModeFM, DecoderNone))
	assert.False(t, registry.LockedBandwidth(Mode("quadrature"), DecoderNone), "unknown mode is not locked")
}

func TestCenterLineOnly(t *testing.T) {
	registry := DefaultRegistry()

	assert.True(t, registry.CenterLineOnly(ModeFM, DecoderLoRa))
	assert.False(t, registry.CenterLineOnly(ModeNone, DecoderSSTV))
	assert.True(t, registry.CenterLineOnly(ModeNone, DecoderNone))
	assert.False(t, registry.CenterLineOnly(ModeFM, DecoderNone))
}

func TestFormatBandwidthLabel(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, "10.0kHz", registry.FormatBandwidthLabel(ModeFM, 10000, DecoderNone), "generic fallback")
	assert.Equal(t, "700Hz", registry.FormatBandwidthLabel(ModeCW, 700, DecoderNone), "demodulator label")
	assert.Equal(t, "500Hz", registry.FormatBandwidthLabel(ModeFM, 500, DecoderMorse), "decoder label takes precedence")
	assert.Equal(t, "2.5kHz", registry.FormatBandwidthLabel(Mode("quadrature"), 2500, Decoder("rtty")), "unknown keys degrade to generic formatting")
}

func TestDecoderParameters(t *testing.T) {
	registry := DefaultRegistry()

	parameters := registry.DecoderParameters(DecoderLoRa)
	assert.Contains(t, parameters, "lora_sf")
	assert.Contains(t, parameters, "lora_cr")
	assert.NotContains(t, parameters, "gmsk_deviation")

	defaults := registry.DecoderDefaultParameters(DecoderLoRa)
	assert.Equal(t, "7", defaults["lora_sf"])
	assert.Equal(t, false, defaults["lora_ldro"])

	assert.Empty(t, registry.DecoderParameters(DecoderSSTV))
}

func TestMapParametersToBackend(t *testing.T) {
	registry := DefaultRegistry()
	parameters := map[string]any{
		"lora_sf":        "9",
		"lora_cr":        "4/6",
		"gmsk_deviation": "5000",
	}

	mapped := registry.MapParametersToBackend(DecoderLoRa, parameters)
	assert.Equal(t, map[string]any{"sf": "9", "cr": "4/6"}, mapped)

	assert.Empty(t, registry.MapParametersToBackend(DecoderGMSK, parameters), "only the LoRa mapping is defined")
	assert.Empty(t, registry.MapParametersToBackend(DecoderNone, parameters))
}

func TestCalculateBandwidth(t *testing.T) {
	registry := DefaultRegistry()
	spec := registry.DecoderConfig(DecoderLoRa)
	require.NotNil(t, spec.CalculateBandwidth)

	assert.Equal(t, 3600, spec.CalculateBandwidth(track.Transmitter{Baud: 1200}), "3x margin for doppler")
	assert.Equal(t, 500000, spec.CalculateBandwidth(track.Transmitter{}), "fallback to the default")
}
