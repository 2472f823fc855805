package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/rxpanel/vfo"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(EventConfigureSDR, SDRSettings{CenterFreq: 100000000, SampleRate: 2000000})

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, EventConfigureSDR, msg.Event)
	assert.JSONEq(t, `{"center_freq":100000000,"sample_rate":2000000}`, string(msg.Payload))

	other, err := NewMessage(EventConfigureSDR, SDRSettings{})
	require.NoError(t, err)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestParseFrame(t *testing.T) {
	tt := []struct {
		desc     string
		raw      string
		isAck    bool
		expected any
		invalid  bool
	}{
		{
			desc:     "push with payload",
			raw:      `{"event":"transcription","payload":{"vfo":2,"text":"hello","final":true}}`,
			expected: Message{Event: EventTranscription, Payload: json.RawMessage(`{"vfo":2,"text":"hello","final":true}`)},
		},
		{
			desc:     "push without payload",
			raw:      `{"event":"radio-info"}`,
			expected: Message{Event: EventRadioInfo},
		},
		{
			desc:     "successful ack",
			raw:      `{"id":"abc","success":true,"data":{"vfo":1}}`,
			isAck:    true,
			expected: Ack{ID: "abc", Success: true, Data: json.RawMessage(`{"vfo":1}`)},
		},
		{
			desc:     "rejected ack",
			raw:      `{"id":"abc","success":false,"error":"backend is busy"}`,
			isAck:    true,
			expected: Ack{ID: "abc", Success: false, Error: "backend is busy"},
		},
		{
			desc:    "ack without id",
			raw:     `{"success":true}`,
			invalid: true,
		},
		{
			desc:    "neither event nor ack",
			raw:     `{"id":"abc"}`,
			invalid: true,
		},
		{
			desc:    "invalid json",
			raw:     `{"event":`,
			invalid: true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			msg, ack, isAck, err := ParseFrame([]byte(tc.raw))

			if tc.invalid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.isAck, isAck)
			if tc.isAck {
				assert.Equal(t, tc.expected, ack)
			} else {
				assert.Equal(t, tc.expected, msg)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	msg, _, isAck, err := ParseFrame([]byte(`{"event":"transcription","payload":{"vfo":2,"text":"hello","language":"en","final":true}}`))
	require.NoError(t, err)
	require.False(t, isAck)

	var transcription Transcription
	require.NoError(t, msg.DecodePayload(&transcription))
	assert.Equal(t, Transcription{VFONumber: 2, Text: "hello", Language: "en", Final: true}, transcription)

	empty := Message{Event: EventRadioInfo}
	assert.Error(t, empty.DecodePayload(&transcription))
}

type pushRecorder struct {
	messages       []Message
	states         [][]vfo.BackendState
	transcriptions []Transcription
	recordings     []RecordingStatus
	infos          []RadioInfo
}

func (r *pushRecorder) Message(msg Message) { r.messages = append(r.messages, msg) }

func (r *pushRecorder) VFOStates(states []vfo.BackendState) { r.states = append(r.states, states) }

func (r *pushRecorder) Transcription(t Transcription) {
	r.transcriptions = append(r.transcriptions, t)
}

func (r *pushRecorder) RecordingStatus(s RecordingStatus) { r.recordings = append(r.recordings, s) }

func (r *pushRecorder) SetRadioInfo(info RadioInfo) { r.infos = append(r.infos, info) }

func TestIncomingMessageDispatch(t *testing.T) {
	var n notifier
	recorder := &pushRecorder{}
	n.Notify(recorder)

	frames := []string{
		`{"event":"vfo-states","payload":[{"vfo":1,"center_freq":145800000,"modulation":"USB"}]}`,
		`{"event":"transcription","payload":{"vfo":1,"text":"cq cq","language":"en"}}`,
		`{"event":"recording-status","payload":{"vfo":1,"recording":true,"filename":"vfo1.wav"}}`,
		`{"event":"radio-info","payload":{"device":"rtlsdr","center_freq":145000000,"sample_rate":2400000}}`,
	}
	for _, raw := range frames {
		msg, _, isAck, err := ParseFrame([]byte(raw))
		require.NoError(t, err)
		require.False(t, isAck)
		n.handleIncomingMessage(msg)
	}

	assert.Len(t, recorder.messages, 4, "every push goes to the message listener")

	require.Len(t, recorder.states, 1)
	require.Len(t, recorder.states[0], 1)
	state := recorder.states[0][0]
	assert.Equal(t, 1, state.VFONumber)
	require.NotNil(t, state.CenterFreq)
	assert.Equal(t, 145800000, *state.CenterFreq)
	require.NotNil(t, state.Modulation)
	assert.Equal(t, "USB", *state.Modulation)

	require.Len(t, recorder.transcriptions, 1)
	assert.Equal(t, "cq cq", recorder.transcriptions[0].Text)

	require.Len(t, recorder.recordings, 1)
	assert.Equal(t, RecordingStatus{VFONumber: 1, Recording: true, Filename: "vfo1.wav"}, recorder.recordings[0])

	require.Len(t, recorder.infos, 1)
	assert.Equal(t, RadioInfo{Device: "rtlsdr", CenterFreq: 145000000, SampleRate: 2400000}, recorder.infos[0])
}
