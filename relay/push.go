package relay

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/vfo"
)

// schedulePush arms the VFO's debounce timer. Rapid edits to the same VFO
// coalesce into one push carrying the last state within the window, edits
// to different VFOs never serialize against each other.
func (r *Relay) schedulePush(number int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if timer, ok := r.timers[number]; ok {
		timer.Stop()
		coalescedTotal.Inc()
	}
	r.timers[number] = time.AfterFunc(r.debounce, func() {
		r.mutex.Lock()
		delete(r.timers, number)
		r.mutex.Unlock()
		r.pushNow(number)
	})
}

// pushNow sends the complete filtered state of the given VFO.
func (r *Relay) pushNow(number int) {
	v, err := r.store.Get(number)
	if err != nil {
		return
	}
	update := r.filterForBackend(v, r.store.Active(number), r.store.Selected() == number)
	r.send(update)
}

// filterForBackend translates a VFO record into the backend's field names,
// stripping everything the backend does not understand: the manual
// frequency offset, the display preferences, and the raw prefixed decoder
// parameters, which are expanded into flat backend fields instead.
func (r *Relay) filterForBackend(v vfo.VFO, active bool, selected bool) map[string]any {
	update := map[string]any{
		"vfo":                        v.Number,
		"active":                     active,
		"selected":                   selected,
		"modulation":                 string(v.Mode),
		"decoder":                    string(v.Decoder),
		"bandwidth":                  v.Bandwidth,
		"volume":                     v.Volume,
		"squelch":                    v.Squelch,
		"step_size":                  v.StepSize,
		"locked_transmitter_id":      v.LockedTransmitterID,
		"transcription_enabled":      v.TranscriptionEnabled,
		"transcription_language":     v.TranscriptionLanguage,
		"transcription_translate_to": v.TranscriptionTranslateTo,
	}
	if v.Frequency != nil {
		update["center_freq"] = *v.Frequency
	}
	if v.Decoder != caps.DecoderNone && v.ParametersEnabled {
		for key, value := range r.registry.MapParametersToBackend(v.Decoder, v.Parameters) {
			update[key] = value
		}
	}
	return update
}

// send forwards the update to the backend, fire-and-forget: a missing
// socket defers the sync to the next push, a rejected push is recorded as
// error message for display and not retried.
func (r *Relay) send(update map[string]any) {
	if r.socket == nil || !r.socket.Connected() {
		log.Debug("no backend connection, sync deferred")
		return
	}
	go func() {
		err := r.socket.UpdateVFOParameters(update)
		if err != nil {
			log.Warn("cannot push VFO update", "error", err)
			pushErrorsTotal.Inc()
			r.store.SetError(err.Error())
			return
		}
		pushesTotal.Inc()
	}()
}
