package vfo

import (
	"github.com/ftl/rxpanel/caps"
)

// BackendState is one VFO's state as the backend reports it, with the
// backend's field names. It is merged into the store through
// ApplyBackendSnapshot.
type BackendState struct {
	VFONumber           int     `json:"vfo"`
	CenterFreq          *int    `json:"center_freq"`
	Modulation          *string `json:"modulation"`
	Decoder             *string `json:"decoder"`
	Bandwidth           *int    `json:"bandwidth"`
	Volume              *int    `json:"volume"`
	Squelch             *int    `json:"squelch"`
	StepSize            *int    `json:"step_size"`
	LockedTransmitterID *string `json:"locked_transmitter_id"`
	Active              *bool   `json:"active"`
	Selected            *bool   `json:"selected"`
}

// ApplyBackendSnapshot merges an authoritative backend snapshot into the
// store, e.g. after a reconnect. Backend field names are translated to
// their frontend counterparts, and the mode/decoder mutual exclusion is
// enforced even if the snapshot is inconsistent. Listeners are not notified
// per field - the snapshot is backend-originated and must not be synced
// back.
func (s *Store) ApplyBackendSnapshot(snapshot []BackendState) {
	s.mutex.Lock()
	for _, state := range snapshot {
		if validNumber(state.VFONumber) != nil {
			continue
		}
		i := state.VFONumber - 1
		v := s.vfos[i]

		if state.CenterFreq != nil {
			frequency := *state.CenterFreq
			v.Frequency = &frequency
		}
		if state.Modulation != nil {
			v.Mode = caps.NormalizeMode(caps.Mode(*state.Modulation))
		}
		if state.Decoder != nil {
			v.Decoder = caps.Decoder(*state.Decoder)
		}
		if state.Bandwidth != nil {
			v.Bandwidth = *state.Bandwidth
		}
		if state.Volume != nil {
			v.Volume = *state.Volume
		}
		if state.Squelch != nil {
			v.Squelch = *state.Squelch
		}
		if state.StepSize != nil {
			v.StepSize = *state.StepSize
		}
		if state.LockedTransmitterID != nil {
			v.LockedTransmitterID = *state.LockedTransmitterID
		}

		// The backend snapshot may claim a demodulator mode alongside an
		// active decoder. The decoder wins, as everywhere else.
		if v.Decoder != caps.DecoderNone {
			v = deriveConsistent(s.registry, v, false, true)
		}

		s.vfos[i] = v
		if state.Active != nil {
			s.active[i] = *state.Active
		}
		if state.Selected != nil && *state.Selected {
			s.selected = state.VFONumber
		}
	}
	s.mutex.Unlock()

	s.emitSnapshotApplied()
}
