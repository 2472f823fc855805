package track

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// FeedConfig describes the MQTT connection the tracking updates arrive on.
type FeedConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Feed subscribes to the tracking service's MQTT topic and hands every
// decoded update to the registered listeners.
type Feed struct {
	config    FeedConfig
	client    mqtt.Client
	listeners []Listener
}

// NewFeed creates a feed for the given MQTT connection. The feed is not
// connected yet, use Connect.
func NewFeed(config FeedConfig, listeners ...Listener) *Feed {
	if config.ClientID == "" {
		config.ClientID = fmt.Sprintf("rxpanel_%d", time.Now().Unix())
	}

	feed := &Feed{
		config:    config,
		listeners: listeners,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info("tracking feed connected", "broker", config.Broker)
		feed.subscribe()
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warn("tracking feed connection lost", "error", err)
	})

	feed.client = mqtt.NewClient(opts)

	return feed
}

// Notify adds a listener to this feed.
func (f *Feed) Notify(listener Listener) {
	f.listeners = append(f.listeners, listener)
}

// Connect connects to the MQTT broker.
func (f *Feed) Connect() error {
	if token := f.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("cannot connect to tracking feed: %w", token.Error())
	}
	return nil
}

// Disconnect disconnects from the MQTT broker.
func (f *Feed) Disconnect() {
	f.client.Disconnect(250)
}

func (f *Feed) subscribe() {
	token := f.client.Subscribe(f.config.Topic, f.config.QoS, f.messageHandler)
	if token.Wait() && token.Error() != nil {
		log.Error("cannot subscribe to tracking topic", "topic", f.config.Topic, "error", token.Error())
		return
	}
	log.Info("subscribed to tracking topic", "topic", f.config.Topic)
}

func (f *Feed) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	var update Update
	if err := json.Unmarshal(msg.Payload(), &update); err != nil {
		log.Warn("cannot parse tracking update", "error", err)
		return
	}
	for _, listener := range f.listeners {
		listener.TrackingUpdate(update)
	}
}
