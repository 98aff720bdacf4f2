// Package ingest subscribes to an MQTT topic carrying JSON-encoded
// accelerometer/gyroscope samples and feeds them into the appropriate
// session, replacing the OS motion-framework collaborator spec.md names
// as out of scope for the core.
package ingest

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/config"
	"github.com/dfeen87/respirosync/internal/session"
)

// Sample is the wire format published by the sensor-acquisition layer.
// Channel distinguishes "accel" from "gyro"; SessionID selects (and, if
// absent, lazily opens) the target session.
type Sample struct {
	SessionID string  `json:"session_id"`
	Channel   string  `json:"channel"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Z         float32 `json:"z"`
	TsMs      uint64  `json:"ts_ms"`
}

// Subscriber wraps a paho MQTT client, routing decoded samples into the
// session Manager.
type Subscriber struct {
	client  mqtt.Client
	manager *session.Manager
	logger  *zap.Logger
}

// NewSubscriber connects to the configured broker without subscribing.
func NewSubscriber(cfg config.MQTTConfig, manager *session.Manager, logger *zap.Logger) (*Subscriber, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}

	return &Subscriber{client: client, manager: manager, logger: logger}, nil
}

// Start subscribes to topic and begins routing samples into sessions.
func (s *Subscriber) Start(topic string, qos byte) error {
	if token := s.client.Subscribe(topic, qos, s.handle); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	s.route(msg.Topic(), msg.Payload())
}

// route decodes payload and dispatches it to the target session. Split
// out from handle so it can be exercised without a live mqtt.Message.
func (s *Subscriber) route(topic string, payload []byte) {
	var sample Sample
	if err := json.Unmarshal(payload, &sample); err != nil {
		s.logger.Warn("dropping malformed sample", zap.Error(err), zap.String("topic", topic))
		return
	}
	if sample.SessionID == "" {
		s.logger.Warn("dropping sample with empty session_id", zap.String("topic", topic))
		return
	}

	sess, ok := s.manager.Get(sample.SessionID)
	if !ok {
		sess = s.manager.Open(sample.SessionID, sample.TsMs)
	}

	switch sample.Channel {
	case "accel":
		sess.FeedAccel(sample.X, sample.Y, sample.Z, sample.TsMs)
	case "gyro":
		sess.FeedGyro(sample.X, sample.Y, sample.Z, sample.TsMs)
	default:
		s.logger.Warn("dropping sample with unknown channel", zap.String("channel", sample.Channel))
	}
}

// Stop disconnects the underlying MQTT client.
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}
