// Package track provides the satellite tracking data consumed for doppler
// locking: the transmitters of the currently tracked target with their
// doppler-corrected downlink frequencies, and a feed that receives tracking
// updates from upstream.
package track

// NoTransmitter is the transmitter ID of an unlocked VFO.
const NoTransmitter = "none"

// Transmitter describes one transmitter of the tracked target, as reported
// by the upstream tracking service. DownlinkObservedFreq is already
// doppler-corrected for the observer's location.
type Transmitter struct {
	ID                   string  `json:"id"`
	Description          string  `json:"description"`
	DownlinkObservedFreq int     `json:"downlink_observed_freq"`
	Mode                 string  `json:"mode"`
	Baud                 float64 `json:"baud"`
	Alive                bool    `json:"alive"`
}

// Update is one tracking event: the identifier of the tracked target and
// the current state of all its transmitters.
type Update struct {
	TargetID     string        `json:"target_id"`
	Transmitters []Transmitter `json:"transmitters"`
}

// Find returns the transmitter with the given ID, or false if the target
// does not carry it (anymore).
func (u Update) Find(id string) (Transmitter, bool) {
	for _, transmitter := range u.Transmitters {
		if transmitter.ID == id {
			return transmitter, true
		}
	}
	return Transmitter{}, false
}

// Listener receives tracking updates from a feed.
type Listener interface {
	TrackingUpdate(update Update)
}
