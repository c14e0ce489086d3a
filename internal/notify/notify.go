// Package notify pushes user notifications to an MQTT broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	publishQoS     = byte(1)
	connectTimeout = 10 * time.Second
	publishTimeout = 3 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// UserTopic is the topic a signed-in client subscribes to for its notifications.
func UserTopic(userID uuid.UUID) string {
	return fmt.Sprintf("liftcare/users/%s/notifications", userID)
}

type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

type MQTT struct {
	client mqtt.Client
	log    zerolog.Logger
}

func NewMQTT(cfg MQTTConfig, log zerolog.Logger) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.Info().Str("broker", cfg.BrokerURL).Msg("mqtt connected")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timeout", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.BrokerURL, err)
	}
	return &MQTT{client: client, log: log}, nil
}

func (m *MQTT) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	token := m.client.Publish(topic, publishQoS, false, data)

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) Close() {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}

// Noop drops every message. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) error { return nil }
