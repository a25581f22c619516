package publisher

import (
	"crypto/tls"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"tank_simulator/internal/model"
)

// Topics names the broker topics for the five per-tick values plus the
// retained status topic used for the last will.
type Topics struct {
	LeftLevel   string
	LeftVolume  string
	RightLevel  string
	RightVolume string
	Timestamp   string
	Status      string
}

// Config holds the broker connection settings.
type Config struct {
	Broker   string // host, or full URL with scheme
	Port     int
	Username string
	Password string
	ClientID string
	Topics   Topics

	// PublishTimeout bounds each publish wait; MaxRetries bounds the
	// per-message retry budget. Zero values pick defaults.
	PublishTimeout time.Duration
	MaxRetries     int
}

// MQTT publishes tick readings to the broker, one topic per value. A failed
// publish is retried with backoff and then dropped; the next tick proceeds
// regardless.
type MQTT struct {
	client  mqtt.Client
	cfg     Config
	timeout time.Duration
	retries int
}

// brokerURL builds the connection URL. Port 8883 implies TLS.
func brokerURL(cfg Config) string {
	if strings.Contains(cfg.Broker, "://") {
		return cfg.Broker
	}
	scheme := "tcp"
	if cfg.Port == 8883 {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker, cfg.Port)
}

// NewMQTT connects to the broker. The last will marks the publisher offline
// on an unclean disconnect.
func NewMQTT(cfg Config) (*MQTT, error) {
	url := brokerURL(cfg)

	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetWill(cfg.Topics.Status, "Offline", 1, true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if strings.HasPrefix(url, "ssl://") || strings.HasPrefix(url, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.OnConnect = func(mqtt.Client) {
		log.Printf("[INFO] connected to MQTT broker %s", url)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("[ERROR] MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, token.Error())
	}

	timeout := cfg.PublishTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	return &MQTT{client: client, cfg: cfg, timeout: timeout, retries: retries}, nil
}

// OnTick implements simulator.Callback: publish the five values.
func (p *MQTT) OnTick(r model.TickReading) {
	p.publish(p.cfg.Topics.LeftLevel, formatFloat(r.LeftLevel))
	p.publish(p.cfg.Topics.LeftVolume, formatFloat(r.LeftVolume))
	p.publish(p.cfg.Topics.RightLevel, formatFloat(r.RightLevel))
	p.publish(p.cfg.Topics.RightVolume, formatFloat(r.RightVolume))
	p.publish(p.cfg.Topics.Timestamp, r.Timestamp.Format(time.RFC3339))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// publish delivers one payload with a bounded retry budget. Failures are
// logged and dropped; tick state is never affected.
func (p *MQTT) publish(topic, payload string) {
	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		token := p.client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(p.timeout) {
			lastErr = fmt.Errorf("publish timeout after %s", p.timeout)
		} else {
			lastErr = token.Error()
		}
		if lastErr == nil {
			return
		}
		if attempt < p.retries {
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
	}
	log.Printf("[ERROR] publish to %s failed after %d attempts: %v", topic, p.retries, lastErr)
}

// Close marks the status topic and disconnects cleanly.
func (p *MQTT) Close() {
	token := p.client.Publish(p.cfg.Topics.Status, 1, true, "Manually Disconnected")
	token.WaitTimeout(p.timeout)
	p.client.Disconnect(250)
}
