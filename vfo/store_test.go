package vfo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/prefs"
	"github.com/ftl/rxpanel/track"
)

func newTestStore() *Store {
	return NewStore(caps.DefaultRegistry(), nil)
}

func modePtr(mode caps.Mode) *caps.Mode { return &mode }

func decoderPtr(decoder caps.Decoder) *caps.Decoder { return &decoder }

func intPtr(value int) *int { return &value }

func strPtr(value string) *string { return &value }

func TestInitialState(t *testing.T) {
	store := newTestStore()

	for number := 1; number <= Count; number++ {
		v, err := store.Get(number)
		require.NoError(t, err)
		assert.Equal(t, number, v.Number)
		assert.Nil(t, v.Frequency)
		assert.Equal(t, caps.ModeFM, v.Mode)
		assert.Equal(t, caps.DecoderNone, v.Decoder)
		assert.Equal(t, 10000, v.Bandwidth)
		assert.Equal(t, track.NoTransmitter, v.LockedTransmitterID)
		assert.False(t, store.Active(number))
	}
	assert.Equal(t, 0, store.Selected())
}

func TestInvalidNumber(t *testing.T) {
	store := newTestStore()

	assert.Error(t, store.SetProperty(0, Patch{}))
	assert.Error(t, store.SetProperty(5, Patch{}))
	assert.Error(t, store.Activate(-1))
	_, err := store.Get(42)
	assert.Error(t, err)
}

// Selecting a decoder and selecting a demodulator mode are mutually
// exclusive, no matter in which order they happen.
func TestMutualExclusion(t *testing.T) {
	registry := caps.DefaultRegistry()
	modes := []caps.Mode{caps.ModeFM, caps.ModeAM, caps.ModeUSB, caps.ModeLSB, caps.ModeCW}
	decoders := []caps.Decoder{caps.DecoderSSTV, caps.DecoderMorse, caps.DecoderLoRa, caps.DecoderGMSK, caps.DecoderWeather}

	rapid.Check(t, func(t *rapid.T) {
		store := NewStore(registry, nil)
		number := rapid.IntRange(1, Count).Draw(t, "number")
		steps := rapid.IntRange(1, 20).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "selectDecoder") {
				decoder := rapid.SampledFrom(decoders).Draw(t, "decoder")
				require.NoError(t, store.SetProperty(number, Patch{Decoder: decoderPtr(decoder)}))

				v, _ := store.Get(number)
				expectedMode := registry.DecoderConfig(decoder).OverrideDemodulator
				if expectedMode == "" {
					expectedMode = caps.ModeNone
				}
				assert.Equal(t, expectedMode, v.Mode)
			} else {
				mode := rapid.SampledFrom(modes).Draw(t, "mode")
				require.NoError(t, store.SetProperty(number, Patch{Mode: modePtr(mode)}))

				v, _ := store.Get(number)
				assert.Equal(t, mode, v.Mode)
				assert.Equal(t, caps.DecoderNone, v.Decoder)
			}
		}
	})
}

// The bandwidth always matches the current mode/decoder pairing: the
// decoder's default wins over the demodulator's.
func TestBandwidthRederivation(t *testing.T) {
	registry := caps.DefaultRegistry()
	modes := []caps.Mode{caps.ModeFM, caps.ModeAM, caps.ModeUSB, caps.ModeLSB, caps.ModeCW}
	decoders := []caps.Decoder{caps.DecoderNone, caps.DecoderSSTV, caps.DecoderMorse, caps.DecoderLoRa, caps.DecoderGMSK, caps.DecoderWeather}

	rapid.Check(t, func(t *rapid.T) {
		store := NewStore(registry, nil)
		number := rapid.IntRange(1, Count).Draw(t, "number")
		mode := rapid.SampledFrom(modes).Draw(t, "mode")
		decoder := rapid.SampledFrom(decoders).Draw(t, "decoder")

		require.NoError(t, store.SetProperty(number, Patch{Mode: modePtr(mode)}))
		require.NoError(t, store.SetProperty(number, Patch{Decoder: decoderPtr(decoder)}))

		v, _ := store.Get(number)
		expected := 0
		if spec, ok := registry.DemodulatorConfig(v.Mode); ok {
			expected = spec.DefaultBandwidth
		}
		if decoder != caps.DecoderNone {
			if decoderDefault := registry.DecoderConfig(decoder).DefaultBandwidth; decoderDefault > 0 {
				expected = decoderDefault
			}
		}
		assert.Equal(t, expected, v.Bandwidth)
	})
}

// The scenario from the panel manual: FM -> lora -> USB.
func TestDecoderModeScenario(t *testing.T) {
	store := newTestStore()

	v, _ := store.Get(2)
	require.Equal(t, caps.ModeFM, v.Mode)
	require.Equal(t, caps.DecoderNone, v.Decoder)
	require.Equal(t, 10000, v.Bandwidth)

	require.NoError(t, store.SetProperty(2, Patch{Decoder: decoderPtr(caps.DecoderLoRa)}))
	v, _ = store.Get(2)
	assert.Equal(t, caps.DecoderLoRa, v.Decoder)
	assert.Equal(t, caps.ModeNone, v.Mode)
	assert.Equal(t, 500000, v.Bandwidth)

	require.NoError(t, store.SetProperty(2, Patch{Mode: modePtr(caps.ModeUSB)}))
	v, _ = store.Get(2)
	assert.Equal(t, caps.DecoderNone, v.Decoder)
	assert.Equal(t, caps.ModeUSB, v.Mode)
	assert.Equal(t, 3000, v.Bandwidth)
}

func TestDeactivationResets(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Activate(3))
	require.NoError(t, store.SetProperty(3, Patch{
		Frequency:           intPtr(437500000),
		LockedTransmitterID: strPtr("tx-42"),
	}))
	require.NoError(t, store.SetProperty(3, Patch{FrequencyOffset: intPtr(250)}))
	require.NoError(t, store.Deactivate(3))

	v, _ := store.Get(3)
	assert.Nil(t, v.Frequency)
	assert.Equal(t, track.NoTransmitter, v.LockedTransmitterID)
	assert.Equal(t, 0, v.FrequencyOffset)
	assert.False(t, store.Active(3))
}

func TestActivationRederivesBandwidth(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.SetProperty(1, Patch{Bandwidth: intPtr(7777)}))
	require.NoError(t, store.Activate(1))

	v, _ := store.Get(1)
	assert.Equal(t, 10000, v.Bandwidth, "bandwidth is re-derived from the current mode on activation")
	assert.True(t, store.Active(1))
}

func TestUnlockResetsOffset(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.SetProperty(1, Patch{LockedTransmitterID: strPtr("tx-1")}))
	require.NoError(t, store.SetProperty(1, Patch{FrequencyOffset: intPtr(100)}))
	require.NoError(t, store.SetProperty(1, Patch{LockedTransmitterID: strPtr(track.NoTransmitter)}))

	v, _ := store.Get(1)
	assert.Equal(t, 0, v.FrequencyOffset)
}

func TestSelection(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Select(2))
	assert.Equal(t, 2, store.Selected())
	require.NoError(t, store.Select(4))
	assert.Equal(t, 4, store.Selected())
	require.NoError(t, store.Select(0))
	assert.Equal(t, 0, store.Selected())
	assert.Error(t, store.Select(5))
}

// The backend snapshot may claim any mode alongside an active decoder, the
// decoder wins.
func TestBackendSnapshotEnforcesMutualExclusion(t *testing.T) {
	registry := caps.DefaultRegistry()
	decoders := []string{"sstv", "morse", "lora", "gmsk", "weather"}
	modes := []string{"FM", "AM", "USB", "LSB", "CW", "NONE"}

	rapid.Check(t, func(t *rapid.T) {
		store := NewStore(registry, nil)
		number := rapid.IntRange(1, Count).Draw(t, "number")
		claimedMode := rapid.SampledFrom(modes).Draw(t, "mode")
		decoder := rapid.SampledFrom(decoders).Draw(t, "decoder")

		store.ApplyBackendSnapshot([]BackendState{{
			VFONumber:  number,
			Modulation: &claimedMode,
			Decoder:    &decoder,
		}})

		v, _ := store.Get(number)
		expectedMode := registry.DecoderConfig(caps.Decoder(decoder)).OverrideDemodulator
		if expectedMode == "" {
			expectedMode = caps.ModeNone
		}
		assert.Equal(t, expectedMode, v.Mode)
	})
}

func TestBackendSnapshotFieldMapping(t *testing.T) {
	store := newTestStore()
	frequency := 145800000
	modulation := "USB"
	bandwidth := 2700
	active := true
	selected := true

	store.ApplyBackendSnapshot([]BackendState{{
		VFONumber:  2,
		CenterFreq: &frequency,
		Modulation: &modulation,
		Bandwidth:  &bandwidth,
		Active:     &active,
		Selected:   &selected,
	}})

	v, _ := store.Get(2)
	require.NotNil(t, v.Frequency)
	assert.Equal(t, 145800000, *v.Frequency)
	assert.Equal(t, caps.ModeUSB, v.Mode)
	assert.Equal(t, 2700, v.Bandwidth, "the backend's bandwidth is authoritative")
	assert.True(t, store.Active(2))
	assert.Equal(t, 2, store.Selected())
}

func TestBackendSnapshotNormalizesLegacyMode(t *testing.T) {
	store := newTestStore()
	modulation := "NONE"

	store.ApplyBackendSnapshot([]BackendState{{VFONumber: 1, Modulation: &modulation}})

	v, _ := store.Get(1)
	assert.Equal(t, caps.ModeNone, v.Mode)
}

func TestBackendSnapshotIgnoresInvalidNumbers(t *testing.T) {
	store := newTestStore()
	before := store.All()

	store.ApplyBackendSnapshot([]BackendState{{VFONumber: 0}, {VFONumber: 17}})

	assert.Equal(t, before, store.All())
}

func TestChangedFields(t *testing.T) {
	store := newTestStore()
	recorder := &changeRecorder{}
	store.Notify(recorder)

	require.NoError(t, store.SetProperty(1, Patch{Decoder: decoderPtr(caps.DecoderLoRa)}))

	require.Len(t, recorder.changes, 1)
	fields := recorder.changes[0].fields
	assert.True(t, fields[FieldDecoder])
	assert.True(t, fields[FieldMode], "the forced mode counts as changed")
	assert.True(t, fields[FieldBandwidth], "the re-derived bandwidth counts as changed")

	recorder.changes = nil
	require.NoError(t, store.SetProperty(1, Patch{FrequencyOffset: intPtr(100)}))
	require.Len(t, recorder.changes, 1)
	assert.True(t, recorder.changes[0].fields.Only(FieldFrequencyOffset))
}

type changeRecorder struct {
	changes []struct {
		v      VFO
		fields FieldSet
	}
}

func (r *changeRecorder) VFOChanged(v VFO, fields FieldSet) {
	r.changes = append(r.changes, struct {
		v      VFO
		fields FieldSet
	}{v, fields})
}

func TestTranscriptionPreferencesPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	store := NewStore(caps.DefaultRegistry(), prefs.Open(path))
	require.NoError(t, store.SetProperty(2, Patch{
		TranscriptionFontSize:      intPtr(24),
		TranscriptionTextAlignment: strPtr("left"),
	}))

	reloaded := NewStore(caps.DefaultRegistry(), prefs.Open(path))
	v, _ := reloaded.Get(2)
	assert.Equal(t, 24, v.TranscriptionFontSize)
	assert.Equal(t, "left", v.TranscriptionTextAlignment)

	other, _ := reloaded.Get(1)
	assert.Equal(t, 16, other.TranscriptionFontSize, "other VFOs keep their defaults")
}

func TestParametersMerge(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.SetProperty(1, Patch{Parameters: map[string]any{"lora_sf": "10"}}))

	v, _ := store.Get(1)
	assert.Equal(t, "10", v.Parameters["lora_sf"])
	assert.Equal(t, "4/5", v.Parameters["lora_cr"], "untouched parameters keep their defaults")
}

func TestErrorMessage(t *testing.T) {
	store := newTestStore()

	assert.Empty(t, store.LastError())
	store.SetError("backend rejected update-vfo-parameters: busy")
	assert.Equal(t, "backend rejected update-vfo-parameters: busy", store.LastError())
	store.ClearError()
	assert.Empty(t, store.LastError())
}
