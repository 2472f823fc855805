package client

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// All events of the panel socket protocol. Outbound events are acknowledged
// by the backend, inbound events arrive unsolicited.
const (
	EventConfigureSDR        = "configure-sdr"
	EventUpdateVFOParameters = "update-vfo-parameters"
	EventStartAudioRecording = "start-audio-recording"
	EventStopAudioRecording  = "stop-audio-recording"
	EventVFOStates           = "vfo-states"
	EventTranscription       = "transcription"
	EventRecordingStatus     = "recording-status"
	EventRadioInfo           = "radio-info"
)

// Message is one frame of the panel socket protocol: an event name with a
// JSON payload. Outbound messages carry an ID that the backend's
// acknowledgement refers to.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage returns a message with the given event and payload and a fresh
// correlation ID.
func NewMessage(event string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("cannot marshal %s payload: %w", event, err)
	}
	return Message{
		ID:      uuid.NewString(),
		Event:   event,
		Payload: raw,
	}, nil
}

// DecodePayload unmarshals the message's payload into the given value.
func (m Message) DecodePayload(to any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %s has no payload", m.Event)
	}
	return json.Unmarshal(m.Payload, to)
}

func (m Message) String() string {
	return fmt.Sprintf("%s:%s", m.Event, string(m.Payload))
}

// Ack is the backend's acknowledgement of an outbound message.
type Ack struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// frame is the union of everything the backend sends: acknowledgements
// (Success set, no event) and unsolicited pushes (event set).
type frame struct {
	ID      string          `json:"id,omitempty"`
	Event   string          `json:"event,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ParseFrame parses an incoming frame and returns either a message or an
// acknowledgement.
func ParseFrame(data []byte) (Message, Ack, bool, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Message{}, Ack{}, false, fmt.Errorf("invalid frame: %w", err)
	}
	if f.Event != "" {
		return Message{ID: f.ID, Event: f.Event, Payload: f.Payload}, Ack{}, false, nil
	}
	if f.ID == "" || f.Success == nil {
		return Message{}, Ack{}, false, fmt.Errorf("frame is neither an event nor an acknowledgement: %s", string(data))
	}
	return Message{}, Ack{ID: f.ID, Success: *f.Success, Data: f.Data, Error: f.Error}, true, nil
}
