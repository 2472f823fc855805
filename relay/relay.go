// Package relay observes the VFO store and keeps the backend in sync: it
// filters out UI-only fields, debounces rapid edits per VFO, rewrites
// manual frequency offsets of doppler-locked VFOs into absolute
// frequencies, and reacts to satellite tracking updates. The backend
// expects authoritative snapshots, so every push contains the complete
// filtered VFO state.
package relay

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/client"
	"github.com/ftl/rxpanel/track"
	"github.com/ftl/rxpanel/vfo"
)

// DefaultDebounce is the coalescing window for ordinary property changes.
const DefaultDebounce = 150 * time.Millisecond

// Socket is the backend connection the relay pushes to. *client.Client
// implements this interface.
type Socket interface {
	Connected() bool
	ConfigureSDR(settings client.SDRSettings) error
	UpdateVFOParameters(update map[string]any) error
}

// Relay synchronizes the VFO store with the backend. Register it as
// listener on the store, the backend client, and the tracking feed.
type Relay struct {
	store    *vfo.Store
	registry *caps.Registry
	socket   Socket
	debounce time.Duration

	mutex           sync.Mutex
	streaming       bool
	centerFrequency int
	sampleRate      int
	targetID        string
	transmitters    map[string]track.Transmitter
	timers          map[int]*time.Timer
}

// New creates a relay for the given store and socket and registers it as
// store listener.
func New(store *vfo.Store, socket Socket, options ...Option) *Relay {
	result := &Relay{
		store:        store,
		registry:     store.Registry(),
		socket:       socket,
		debounce:     DefaultDebounce,
		transmitters: make(map[string]track.Transmitter),
		timers:       make(map[int]*time.Timer),
	}
	for _, option := range options {
		option(result)
	}
	store.Notify(result)
	return result
}

// Option configures a Relay.
type Option func(*Relay)

// WithDebounce overrides the coalescing window, mainly for testing.
func WithDebounce(d time.Duration) Option {
	return func(r *Relay) {
		r.debounce = d
	}
}

// ConfigureRadio sets the frequency window the activation guard checks
// against and forwards the settings to the backend.
func (r *Relay) ConfigureRadio(centerFrequency int, sampleRate int) error {
	r.mutex.Lock()
	r.centerFrequency = centerFrequency
	r.sampleRate = sampleRate
	r.mutex.Unlock()

	if r.socket == nil || !r.socket.Connected() {
		return nil
	}
	return r.socket.ConfigureSDR(client.SDRSettings{CenterFreq: centerFrequency, SampleRate: sampleRate})
}

// SetRadioInfo handles the radio-info push: the backend's reported window
// is authoritative for the activation guard.
func (r *Relay) SetRadioInfo(info client.RadioInfo) {
	r.mutex.Lock()
	r.centerFrequency = info.CenterFreq
	r.sampleRate = info.SampleRate
	r.mutex.Unlock()
}

// SetStreaming flips the session's streaming state. While streaming is off
// the relay does not forward anything; the transition to streaming pushes
// the full state of every active VFO that has a frequency.
func (r *Relay) SetStreaming(streaming bool) {
	r.mutex.Lock()
	wasStreaming := r.streaming
	r.streaming = streaming
	r.mutex.Unlock()

	if streaming && !wasStreaming {
		r.syncAll()
	}
}

// Streaming indicates if the relay currently forwards changes.
func (r *Relay) Streaming() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.streaming
}

// Connected handles a (re-)established backend connection: the radio
// configuration is sent again, and if the session is streaming, all active
// VFOs are synced.
func (r *Relay) Connected() {
	r.mutex.Lock()
	centerFrequency := r.centerFrequency
	sampleRate := r.sampleRate
	streaming := r.streaming
	r.mutex.Unlock()

	if sampleRate != 0 && r.socket != nil && r.socket.Connected() {
		err := r.socket.ConfigureSDR(client.SDRSettings{CenterFreq: centerFrequency, SampleRate: sampleRate})
		if err != nil {
			log.Warn("cannot configure backend", "error", err)
		}
	}
	if streaming {
		r.syncAll()
	}
}

// syncAll pushes the full state of every active VFO that was tuned at least
// once. Uninitialized VFOs are skipped.
func (r *Relay) syncAll() {
	for number := 1; number <= vfo.Count; number++ {
		if !r.store.Active(number) {
			continue
		}
		v, err := r.store.Get(number)
		if err != nil || v.Frequency == nil {
			continue
		}
		r.pushNow(number)
	}
}

// VFOChanged implements the store's change notification. Offset-only
// changes of a locked VFO are rewritten into an absolute frequency update,
// UI-only changes stay local, everything else schedules a debounced push.
func (r *Relay) VFOChanged(v vfo.VFO, fields vfo.FieldSet) {
	if fields.Only(vfo.FieldFrequencyOffset) && v.LockedTransmitterID != track.NoTransmitter {
		r.retune(v)
		return
	}
	if uiOnly(fields) {
		return
	}
	if !r.Streaming() {
		return
	}
	r.schedulePush(v.Number)
}

// retune translates the manual offset of a locked VFO into an absolute
// frequency. The backend only understands absolute frequencies, the raw
// offset never leaves the client.
func (r *Relay) retune(v vfo.VFO) {
	r.mutex.Lock()
	transmitter, ok := r.transmitters[v.LockedTransmitterID]
	r.mutex.Unlock()

	if !ok {
		log.Warn("locked transmitter is unknown, unlocking", "vfo", v.Number, "transmitter", v.LockedTransmitterID)
		r.unlock(v.Number)
		return
	}

	finalFrequency := transmitter.DownlinkObservedFreq + v.FrequencyOffset
	if v.Frequency != nil && *v.Frequency == finalFrequency {
		return
	}
	err := r.store.SetProperty(v.Number, vfo.Patch{Frequency: &finalFrequency})
	if err != nil {
		log.Warn("cannot retune VFO", "vfo", v.Number, "error", err)
	}
}

// VFOActivated implements the store's activation notification. A VFO whose
// stored frequency is missing or outside the streamed window is recentered
// and unlocked before anything is pushed for this activation.
func (r *Relay) VFOActivated(v vfo.VFO) {
	r.mutex.Lock()
	centerFrequency := r.centerFrequency
	sampleRate := r.sampleRate
	streaming := r.streaming
	r.mutex.Unlock()

	if sampleRate != 0 && (v.Frequency == nil || outOfWindow(*v.Frequency, centerFrequency, sampleRate)) {
		frequency := centerFrequency
		noTransmitter := track.NoTransmitter
		err := r.store.SetProperty(v.Number, vfo.Patch{
			Frequency:           &frequency,
			LockedTransmitterID: &noTransmitter,
		})
		if err != nil {
			log.Warn("cannot recenter VFO", "vfo", v.Number, "error", err)
		}
	}

	if streaming {
		r.schedulePush(v.Number)
	}
}

// VFODeactivated implements the store's deactivation notification. A
// pending debounced push is canceled so that the backend never receives the
// stale pre-reset state, then the deactivation itself is pushed.
func (r *Relay) VFODeactivated(v vfo.VFO) {
	r.mutex.Lock()
	if timer, ok := r.timers[v.Number]; ok {
		timer.Stop()
		delete(r.timers, v.Number)
	}
	streaming := r.streaming
	r.mutex.Unlock()

	if streaming {
		r.pushNow(v.Number)
	}
}

// SelectionChanged implements the store's selection notification. Selecting
// pushes the selected VFO's full state, deselecting sends the sentinel
// update the backend expects.
func (r *Relay) SelectionChanged(number int) {
	if !r.Streaming() {
		return
	}
	if number == 0 {
		r.send(map[string]any{"vfo": 0, "selected": false})
		return
	}
	r.pushNow(number)
}

// VFOStates implements the client's snapshot notification and merges the
// authoritative backend state into the store.
func (r *Relay) VFOStates(states []vfo.BackendState) {
	r.store.ApplyBackendSnapshot(states)
}

func outOfWindow(frequency int, centerFrequency int, sampleRate int) bool {
	return frequency < centerFrequency-sampleRate/2 || frequency > centerFrequency+sampleRate/2
}

// uiOnly indicates if the given change concerns only fields the backend
// does not know about.
func uiOnly(fields vfo.FieldSet) bool {
	for field := range fields {
		switch field {
		case vfo.FieldFrequencyOffset, vfo.FieldTranscriptionFontSize, vfo.FieldTranscriptionTextAlignment:
		default:
			return false
		}
	}
	return len(fields) > 0
}

func (r *Relay) unlock(number int) {
	noTransmitter := track.NoTransmitter
	err := r.store.SetProperty(number, vfo.Patch{LockedTransmitterID: &noTransmitter})
	if err != nil {
		log.Warn("cannot unlock VFO", "vfo", number, "error", err)
		return
	}
	unlocksTotal.Inc()
}
