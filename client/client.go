// Package client speaks the panel socket protocol to the SDR backend:
// JSON frames over a websocket, outbound commands acknowledged by ID,
// unsolicited inbound pushes fanned out to listeners.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// DefaultPort of the panel backend.
const DefaultPort = 8073

// AckTimeout is the duration to wait for the backend's acknowledgement of
// an outbound command.
var AckTimeout = time.Duration(2 * time.Second)

// ErrAckTimeout indicates a timeout while waiting for an acknowledgement.
var ErrAckTimeout = errors.New("acknowledgement timeout")

// ErrNotConnected indicates that there is currently no backend connection available.
var ErrNotConnected = errors.New("not connected")

// ErrRejected indicates that the backend acknowledged a command as failed.
type ErrRejected struct {
	Event  string
	Reason string
}

func (e ErrRejected) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Event, e.Reason)
}

// Client represents a connection to the panel backend.
type Client struct {
	notifier
	host           *net.TCPAddr
	closed         chan struct{}
	disconnectChan chan struct{}
	writeChan      chan command
}

type command struct {
	Message
	reply chan reply
}

type reply struct {
	Ack
	err error
}

type clientConn interface {
	Close() error
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
}

// Open a connection to the given host.
func Open(host *net.TCPAddr) (*Client, error) {
	client := Client{
		host:   host,
		closed: make(chan struct{}),
	}
	err := client.connect()
	if err != nil {
		return nil, err
	}

	return &client, nil
}

// KeepOpen opens a connection to the given host and keeps it open: when the
// connection is lost, it retries with the given interval until Disconnect
// is called.
func KeepOpen(host *net.TCPAddr, retryInterval time.Duration) *Client {
	client := &Client{
		host:   host,
		closed: make(chan struct{}),
	}
	go func() {
		disconnected := make(chan bool, 1)
		for {
			err := client.connect()
			if err == nil {
				client.WhenDisconnected(func() {
					disconnected <- true
				})
				select {
				case <-disconnected:
					log.Warn("connection lost, waiting for retry", "host", host.IP.String())
				case <-client.closed:
					log.Info("connection closed")
					return
				}
			} else {
				log.Warn("cannot connect, waiting for retry", "host", host.IP.String(), "error", err)
			}

			select {
			case <-time.After(retryInterval):
				log.Info("retrying to connect", "host", host.IP.String())
			case <-client.closed:
				log.Info("connection closed")
				return
			}
		}
	}()
	return client
}

func (c *Client) connect() error {
	if c.Connected() {
		return nil
	}

	host := c.host.IP.String()
	port := c.host.Port
	if port == 0 {
		port = DefaultPort
	}

	u, err := url.Parse(fmt.Sprintf("ws://%s:%d/ws", host, port))
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("cannot open websocket connection: %w", err)
	}
	c.disconnectChan = make(chan struct{})
	c.writeChan = make(chan command, 1)
	log.Info("connected", "remote", conn.RemoteAddr().String())

	acks := make(chan Ack, 1)

	go c.readLoop(conn, acks)
	go c.writeLoop(conn, acks)

	c.emitConnected()

	return nil
}

func (c *Client) readLoop(conn clientConn, acks chan<- Ack) {
	defer conn.Close()
	for {
		select {
		case <-c.disconnectChan:
			return
		default:
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				log.Warn("cannot read next frame", "error", err)
				close(c.disconnectChan)
				return
			}
			if msgType != websocket.TextMessage {
				log.Warn("unexpected frame type", "type", msgType)
				continue
			}
			message, ack, isAck, err := ParseFrame(data)
			if err != nil {
				log.Warn("cannot parse incoming frame", "error", err)
				continue
			}
			if isAck {
				acks <- ack
				continue
			}
			c.handleIncomingMessage(message)
		}
	}
}

func (c *Client) writeLoop(conn clientConn, acks <-chan Ack) {
	defer conn.Close()

	type pendingCommand struct {
		reply    chan reply
		deadline time.Time
	}
	pending := make(map[string]pendingCommand)
	sweep := time.NewTicker(AckTimeout / 4)
	defer sweep.Stop()

	for {
		select {
		case <-c.disconnectChan:
			for _, p := range pending {
				p.reply <- reply{err: ErrNotConnected}
			}
			return
		case ack := <-acks:
			p, ok := pending[ack.ID]
			if !ok {
				log.Warn("acknowledgement for unknown command", "id", ack.ID)
				continue
			}
			delete(pending, ack.ID)
			p.reply <- reply{Ack: ack}
		case cmd := <-c.writeChan:
			data, err := json.Marshal(cmd.Message)
			if err != nil {
				cmd.reply <- reply{err: err}
				continue
			}
			err = conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				log.Warn("error writing command", "event", cmd.Event, "error", err)
				cmd.reply <- reply{err: err}
				continue
			}
			pending[cmd.ID] = pendingCommand{reply: cmd.reply, deadline: time.Now().Add(AckTimeout)}
		case now := <-sweep.C:
			for id, p := range pending {
				if now.After(p.deadline) {
					delete(pending, id)
					p.reply <- reply{err: ErrAckTimeout}
				}
			}
		}
	}
}

// Connected indicates if this client currently has a backend connection.
func (c *Client) Connected() bool {
	if c.disconnectChan == nil {
		return false
	}
	select {
	case <-c.disconnectChan:
		return false
	default:
		return true
	}
}

// Disconnect closes the connection and stops any reconnection attempts.
func (c *Client) Disconnect() {
	// When the connection was disconnected from the outside, we keep it closed.
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	if c.disconnectChan == nil {
		return
	}
	select {
	case <-c.disconnectChan:
		return
	default:
		close(c.disconnectChan)
	}
}

// WhenDisconnected calls the given function as soon as the current
// connection is gone.
func (c *Client) WhenDisconnected(f func()) {
	if c.disconnectChan == nil {
		f()
		return
	}
	go func() {
		<-c.disconnectChan
		f()
	}()
}

func (c *Client) command(event string, payload any) (Ack, error) {
	if !c.Connected() {
		return Ack{}, ErrNotConnected
	}
	message, err := NewMessage(event, payload)
	if err != nil {
		return Ack{}, err
	}
	replyChan := make(chan reply, 1)
	c.writeChan <- command{
		Message: message,
		reply:   replyChan,
	}
	reply := <-replyChan

	if reply.err != nil {
		return Ack{}, reply.err
	}
	if !reply.Success {
		return reply.Ack, ErrRejected{Event: event, Reason: reply.Error}
	}
	return reply.Ack, nil
}

// SDRSettings is the payload of the configure-sdr command.
type SDRSettings struct {
	CenterFreq int `json:"center_freq"`
	SampleRate int `json:"sample_rate"`
}

// ConfigureSDR configures the backend's center frequency and sample rate.
func (c *Client) ConfigureSDR(settings SDRSettings) error {
	_, err := c.command(EventConfigureSDR, settings)
	return err
}

// UpdateVFOParameters pushes an authoritative VFO snapshot to the backend.
// The fields are backend field names, assembled by the relay.
func (c *Client) UpdateVFOParameters(update map[string]any) error {
	_, err := c.command(EventUpdateVFOParameters, update)
	return err
}

// StartAudioRecording starts recording the given VFO's audio on the backend.
func (c *Client) StartAudioRecording(vfoNumber int) error {
	_, err := c.command(EventStartAudioRecording, map[string]any{"vfo": vfoNumber})
	return err
}

// StopAudioRecording stops recording the given VFO's audio on the backend.
func (c *Client) StopAudioRecording(vfoNumber int) error {
	_, err := c.command(EventStopAudioRecording, map[string]any{"vfo": vfoNumber})
	return err
}
