package client

import (
	"github.com/charmbracelet/log"

	"github.com/ftl/rxpanel/vfo"
)

// Transcription is one live subtitle fragment produced by the backend's
// transcription engine.
type Transcription struct {
	VFONumber int    `json:"vfo"`
	Text      string `json:"text"`
	Language  string `json:"language"`
	Final     bool   `json:"final"`
}

// RecordingStatus reports the state of a VFO's audio recording.
type RecordingStatus struct {
	VFONumber int    `json:"vfo"`
	Recording bool   `json:"recording"`
	Filename  string `json:"filename"`
}

type notifier struct {
	listeners []any
}

// Notify registers the given listener. The listener is checked against all
// listener interfaces of this package.
func (n *notifier) Notify(listener any) {
	n.listeners = append(n.listeners, listener)
}

func (n *notifier) handleIncomingMessage(msg Message) {
	n.emitMessage(msg)
	var err error
	switch msg.Event {
	case EventVFOStates:
		err = n.emitVFOStates(msg)
	case EventTranscription:
		err = n.emitTranscription(msg)
	case EventRecordingStatus:
		err = n.emitRecordingStatus(msg)
	case EventRadioInfo:
		err = n.emitRadioInfo(msg)
	default:
		log.Warn("unknown incoming event", "event", msg.Event)
	}
	if err != nil {
		log.Warn("cannot emit incoming event", "event", msg.Event, "error", err)
	}
}

// MessageListener receives every incoming push message.
type MessageListener interface {
	Message(msg Message)
}

func (n *notifier) emitMessage(msg Message) {
	for _, l := range n.listeners {
		if listener, ok := l.(MessageListener); ok {
			listener.Message(msg)
		}
	}
}

// ConnectedListener is notified when a backend connection was established.
type ConnectedListener interface {
	Connected()
}

func (n *notifier) emitConnected() {
	for _, l := range n.listeners {
		if listener, ok := l.(ConnectedListener); ok {
			listener.Connected()
		}
	}
}

// VFOStatesListener receives authoritative VFO snapshots from the backend.
type VFOStatesListener interface {
	VFOStates(states []vfo.BackendState)
}

func (n *notifier) emitVFOStates(msg Message) error {
	var states []vfo.BackendState
	if err := msg.DecodePayload(&states); err != nil {
		return err
	}
	for _, l := range n.listeners {
		if listener, ok := l.(VFOStatesListener); ok {
			listener.VFOStates(states)
		}
	}
	return nil
}

// TranscriptionListener receives live subtitle fragments.
type TranscriptionListener interface {
	Transcription(t Transcription)
}

func (n *notifier) emitTranscription(msg Message) error {
	var t Transcription
	if err := msg.DecodePayload(&t); err != nil {
		return err
	}
	for _, l := range n.listeners {
		if listener, ok := l.(TranscriptionListener); ok {
			listener.Transcription(t)
		}
	}
	return nil
}

// RecordingStatusListener receives recording state changes.
type RecordingStatusListener interface {
	RecordingStatus(status RecordingStatus)
}

func (n *notifier) emitRecordingStatus(msg Message) error {
	var status RecordingStatus
	if err := msg.DecodePayload(&status); err != nil {
		return err
	}
	for _, l := range n.listeners {
		if listener, ok := l.(RecordingStatusListener); ok {
			listener.RecordingStatus(status)
		}
	}
	return nil
}

// RadioInfoListener receives the backend's radio parameters, sent when the
// connection is established and whenever they change.
type RadioInfoListener interface {
	SetRadioInfo(info RadioInfo)
}

func (n *notifier) emitRadioInfo(msg Message) error {
	var info RadioInfo
	if err := msg.DecodePayload(&info); err != nil {
		return err
	}
	for _, l := range n.listeners {
		if listener, ok := l.(RadioInfoListener); ok {
			listener.SetRadioInfo(info)
		}
	}
	return nil
}
