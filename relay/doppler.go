package relay

import (
	"github.com/charmbracelet/log"

	"github.com/ftl/rxpanel/track"
	"github.com/ftl/rxpanel/vfo"
)

// TrackingUpdate implements the tracking feed's notification. When the
// tracked target changed, every locked VFO is unlocked - transmitter IDs of
// the old target must not silently persist. Otherwise every locked VFO is
// retuned to its transmitter's current doppler-corrected frequency.
func (r *Relay) TrackingUpdate(update track.Update) {
	r.mutex.Lock()
	previousTargetID := r.targetID
	r.targetID = update.TargetID
	transmitters := make(map[string]track.Transmitter, len(update.Transmitters))
	for _, transmitter := range update.Transmitters {
		transmitters[transmitter.ID] = transmitter
	}
	r.transmitters = transmitters
	r.mutex.Unlock()

	if previousTargetID != "" && previousTargetID != update.TargetID {
		log.Info("tracked target changed, unlocking all VFOs", "previous", previousTargetID, "current", update.TargetID)
		r.unlockAll()
		return
	}

	for number := 1; number <= vfo.Count; number++ {
		v, err := r.store.Get(number)
		if err != nil || v.LockedTransmitterID == track.NoTransmitter {
			continue
		}

		transmitter, found := update.Find(v.LockedTransmitterID)
		if !found {
			log.Warn("locked transmitter disappeared, unlocking", "vfo", number, "transmitter", v.LockedTransmitterID)
			r.unlock(number)
			continue
		}

		// Inactive VFOs are not demodulating, their frequency needs no
		// backend update.
		if !r.store.Active(number) {
			continue
		}

		finalFrequency := transmitter.DownlinkObservedFreq + v.FrequencyOffset
		if v.Frequency != nil && *v.Frequency == finalFrequency {
			continue
		}
		err = r.store.SetProperty(number, vfo.Patch{Frequency: &finalFrequency})
		if err != nil {
			log.Warn("cannot retune VFO", "vfo", number, "error", err)
		}
	}
}

func (r *Relay) unlockAll() {
	for number := 1; number <= vfo.Count; number++ {
		v, err := r.store.Get(number)
		if err != nil || v.LockedTransmitterID == track.NoTransmitter {
			continue
		}
		r.unlock(number)
	}
}
