package vfo

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/prefs"
	"github.com/ftl/rxpanel/track"
)

// Store holds the four VFO records, their activation flags, and the current
// selection. It is safe for concurrent use. Listeners are notified after a
// mutation was applied, outside of the store's lock.
type Store struct {
	notifier

	registry *caps.Registry
	prefs    *prefs.Store

	mutex    sync.RWMutex
	vfos     [Count]VFO
	active   [Count]bool
	selected int // 0 = no VFO selected
	errorMsg string
}

// NewStore creates a store with all VFOs inactive and configured with the
// registry's defaults. Persisted display preferences are read from the
// given preference store, nil disables persistence.
func NewStore(registry *caps.Registry, preferences *prefs.Store) *Store {
	result := &Store{
		registry: registry,
		prefs:    preferences,
	}
	for i := range result.vfos {
		number := i + 1
		v := newVFO(registry, number)
		if preferences != nil {
			if value, ok := preferences.Get(prefs.FontSizeKey(number)); ok {
				if size, err := strconv.Atoi(value); err == nil {
					v.TranscriptionFontSize = size
				}
			}
			if value, ok := preferences.Get(prefs.TextAlignmentKey(number)); ok {
				v.TranscriptionTextAlignment = value
			}
		}
		result.vfos[i] = v
	}
	return result
}

// Registry this store derives defaults from.
func (s *Store) Registry() *caps.Registry {
	return s.registry
}

// Get returns a copy of the given VFO's state.
func (s *Store) Get(number int) (VFO, error) {
	if err := validNumber(number); err != nil {
		return VFO{}, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.vfos[number-1].copy(), nil
}

// All returns a copy of all VFO states.
func (s *Store) All() [Count]VFO {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var result [Count]VFO
	for i, v := range s.vfos {
		result[i] = v.copy()
	}
	return result
}

// Active indicates if the given VFO is active. Only active VFOs are
// demodulating and synced to the backend.
func (s *Store) Active(number int) bool {
	if validNumber(number) != nil {
		return false
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.active[number-1]
}

// Selected returns the number of the currently selected ("listened") VFO,
// 0 if no VFO is selected.
func (s *Store) Selected() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.selected
}

// SetProperty shallow-merges the given patch into the VFO's record. If the
// patch touches the mode or the decoder, the mutual exclusion rule is
// applied and the bandwidth is re-derived from the new pairing.
func (s *Store) SetProperty(number int, patch Patch) error {
	if err := validNumber(number); err != nil {
		return err
	}

	s.mutex.Lock()
	v := s.vfos[number-1]
	fields := make(FieldSet)

	if patch.Frequency != nil {
		frequency := *patch.Frequency
		v.Frequency = &frequency
		fields[FieldFrequency] = true
	}
	if patch.Bandwidth != nil {
		v.Bandwidth = *patch.Bandwidth
		fields[FieldBandwidth] = true
	}
	if patch.StepSize != nil {
		v.StepSize = *patch.StepSize
		fields[FieldStepSize] = true
	}
	if patch.Volume != nil {
		v.Volume = *patch.Volume
		fields[FieldVolume] = true
	}
	if patch.Squelch != nil {
		v.Squelch = *patch.Squelch
		fields[FieldSquelch] = true
	}
	if patch.LockedTransmitterID != nil {
		v.LockedTransmitterID = *patch.LockedTransmitterID
		fields[FieldLockedTransmitterID] = true
		if v.LockedTransmitterID == track.NoTransmitter {
			v.FrequencyOffset = 0
			fields[FieldFrequencyOffset] = true
		}
	}
	if patch.FrequencyOffset != nil {
		v.FrequencyOffset = *patch.FrequencyOffset
		fields[FieldFrequencyOffset] = true
	}
	if patch.TranscriptionEnabled != nil {
		v.TranscriptionEnabled = *patch.TranscriptionEnabled
		fields[FieldTranscriptionEnabled] = true
	}
	if patch.TranscriptionLanguage != nil {
		v.TranscriptionLanguage = *patch.TranscriptionLanguage
		fields[FieldTranscriptionLanguage] = true
	}
	if patch.TranscriptionTranslateTo != nil {
		v.TranscriptionTranslateTo = *patch.TranscriptionTranslateTo
		fields[FieldTranscriptionTranslateTo] = true
	}
	if patch.TranscriptionFontSize != nil {
		v.TranscriptionFontSize = *patch.TranscriptionFontSize
		fields[FieldTranscriptionFontSize] = true
	}
	if patch.TranscriptionTextAlignment != nil {
		v.TranscriptionTextAlignment = *patch.TranscriptionTextAlignment
		fields[FieldTranscriptionTextAlignment] = true
	}
	if len(patch.Parameters) > 0 {
		parameters := make(map[string]any, len(v.Parameters)+len(patch.Parameters))
		for key, value := range v.Parameters {
			parameters[key] = value
		}
		for key, value := range patch.Parameters {
			parameters[key] = value
		}
		v.Parameters = parameters
		fields[FieldParameters] = true
	}
	if patch.ParametersEnabled != nil {
		v.ParametersEnabled = *patch.ParametersEnabled
		fields[FieldParametersEnabled] = true
	}

	modeTouched := patch.Mode != nil
	decoderTouched := patch.Decoder != nil
	if modeTouched {
		v.Mode = caps.NormalizeMode(*patch.Mode)
		fields[FieldMode] = true
	}
	if decoderTouched {
		v.Decoder = *patch.Decoder
		fields[FieldDecoder] = true
	}
	if modeTouched || decoderTouched {
		before := v
		v = deriveConsistent(s.registry, v, modeTouched, decoderTouched)
		v.Bandwidth = deriveBandwidth(s.registry, v.Mode, v.Decoder)
		if v.Mode != before.Mode {
			fields[FieldMode] = true
		}
		if v.Decoder != before.Decoder {
			fields[FieldDecoder] = true
		}
		if v.Bandwidth != before.Bandwidth {
			fields[FieldBandwidth] = true
		}
	}

	s.vfos[number-1] = v
	result := v.copy()
	s.mutex.Unlock()

	s.persistPreferences(number, fields, result)
	if len(fields) > 0 {
		s.emitVFOChanged(result, fields)
	}
	return nil
}

// Activate marks the given VFO as active. The bandwidth is re-derived from
// the current decoder or mode in case the configuration drifted while the
// VFO was inactive.
func (s *Store) Activate(number int) error {
	if err := validNumber(number); err != nil {
		return err
	}

	s.mutex.Lock()
	v := s.vfos[number-1]
	v.Bandwidth = deriveBandwidth(s.registry, v.Mode, v.Decoder)
	s.vfos[number-1] = v
	s.active[number-1] = true
	result := v.copy()
	s.mutex.Unlock()

	s.emitVFOActivated(result)
	return nil
}

// Deactivate marks the given VFO as inactive, clears its frequency so that
// the next activation recenters, and removes any transmitter lock so that a
// stale doppler lock cannot silently reapply.
func (s *Store) Deactivate(number int) error {
	if err := validNumber(number); err != nil {
		return err
	}

	s.mutex.Lock()
	v := s.vfos[number-1]
	v.Frequency = nil
	v.LockedTransmitterID = track.NoTransmitter
	v.FrequencyOffset = 0
	s.vfos[number-1] = v
	s.active[number-1] = false
	result := v.copy()
	s.mutex.Unlock()

	s.emitVFODeactivated(result)
	return nil
}

// Select marks the given VFO as the one that is listened to, 0 deselects.
// At most one VFO is selected at a time.
func (s *Store) Select(number int) error {
	if number != 0 {
		if err := validNumber(number); err != nil {
			return err
		}
	}

	s.mutex.Lock()
	s.selected = number
	s.mutex.Unlock()

	s.emitSelectionChanged(number)
	return nil
}

// SetError records a backend error for display, e.g. a rejected parameter
// update.
func (s *Store) SetError(message string) {
	s.mutex.Lock()
	s.errorMsg = message
	s.mutex.Unlock()
}

// ClearError removes the recorded backend error.
func (s *Store) ClearError() {
	s.SetError("")
}

// LastError returns the recorded backend error, "" if there is none.
func (s *Store) LastError() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorMsg
}

func (s *Store) persistPreferences(number int, fields FieldSet, v VFO) {
	if s.prefs == nil {
		return
	}
	if fields[FieldTranscriptionFontSize] {
		s.prefs.Set(prefs.FontSizeKey(number), strconv.Itoa(v.TranscriptionFontSize))
	}
	if fields[FieldTranscriptionTextAlignment] {
		s.prefs.Set(prefs.TextAlignmentKey(number), v.TranscriptionTextAlignment)
	}
}

func validNumber(number int) error {
	if number < 1 || number > Count {
		return fmt.Errorf("invalid VFO number: %d", number)
	}
	return nil
}
