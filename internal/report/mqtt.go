package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig describes the broker connection for result publication.
type MQTTConfig struct {
	Broker   string // e.g. tcp://127.0.0.1:1883
	ClientID string
	Topic    string // topic prefix, entries go to <Topic>/result
	Username string
	Password string
	QoS      byte
}

const mqttConnectTimeout = 10 * time.Second

// MQTTSink publishes every entry and the final summary to an MQTT
// broker, so bench monitors can follow a run live. Publish failures are
// logged and never interrupt the run.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    *slog.Logger
}

// NewMQTTSink connects to the broker and returns a ready sink.
func NewMQTTSink(cfg MQTTConfig, log *slog.Logger) (*MQTTSink, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	log.Info("mqtt sink connected", "broker", cfg.Broker, "topic", cfg.Topic)
	return &MQTTSink{client: client, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

func (s *MQTTSink) WriteEntry(e Entry) {
	s.publish(s.topic+"/result", false, e)
}

func (s *MQTTSink) WriteRun(info RunInfo) {
	// Retained so a late subscriber still sees the last run's outcome.
	s.publish(s.topic+"/summary", true, info)
}

func (s *MQTTSink) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("mqtt payload marshal", "topic", topic, "error", err)
		return
	}
	token := s.client.Publish(topic, s.qos, retained, payload)
	if token.WaitTimeout(mqttConnectTimeout) && token.Error() != nil {
		s.log.Warn("mqtt publish", "topic", topic, "error", token.Error())
	}
}

// Close disconnects from the broker, allowing in-flight publishes a
// short grace period.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
