package publisher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Config"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

const (
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

var ErrNotConnected = errors.New("mqtt client not connected")

// StateMessage is the retained payload published for every state change
type StateMessage struct {
	DeviceID  string    `json:"device_id"`
	State     bool      `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// MQTTPublisher publishes device state to <prefix>/<device_id>/state.
// Publishing never waits for the broker; delivery failures are logged.
type MQTTPublisher struct {
	client   mqtt.Client
	prefix   string
	qos      byte
	timeout  time.Duration
	logger   *logger.Logger
	now      func() time.Time
	onResult func(topic string, err error)
	inflight sync.WaitGroup
}

// NewMQTTPublisher connects to the configured broker
func NewMQTTPublisher(cfg *config.Config, logger *logger.Logger) (*MQTTPublisher, error) {
	log := logger.WithComponent("mqtt-publisher")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.GetMQTTBrokerURL()).
		SetClientID(cfg.MQTT.ClientID).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(false).
		SetCleanSession(true)

	if cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(cfg.MQTT.BrokerUser)
		opts.SetPassword(cfg.MQTT.BrokerPass)
	}

	if cfg.MQTT.UseTLS {
		tlsCfg, err := tlsConfig(cfg.MQTT.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.ErrorWithError(err, "MQTT connection lost")
	}
	opts.OnConnect = func(_ mqtt.Client) {
		log.Logger.Info().Str("broker", cfg.GetMQTTBrokerURL()).Msg("MQTT connected")
	}

	client := mqtt.NewClient(opts)
	tk := client.Connect()
	if !tk.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker: timed out after %v", publishTimeout)
	}
	if err := tk.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return newMQTTPublisherWithClient(client, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS), log), nil
}

func newMQTTPublisherWithClient(client mqtt.Client, prefix string, qos byte, logger *logger.Logger) *MQTTPublisher {
	p := &MQTTPublisher{
		client:  client,
		prefix:  prefix,
		qos:     qos,
		timeout: publishTimeout,
		logger:  logger,
		now:     time.Now,
	}
	p.onResult = p.logResult
	return p
}

// StateTopic returns the topic a device's state is published on
func (p *MQTTPublisher) StateTopic(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", p.prefix, deviceID)
}

// PublishState hands a retained state message to the client and returns
// without waiting for the broker to acknowledge it.
func (p *MQTTPublisher) PublishState(_ context.Context, deviceID string, state bool) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(StateMessage{
		DeviceID:  deviceID,
		State:     state,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal state message: %w", err)
	}

	topic := p.StateTopic(deviceID)
	token := p.client.Publish(topic, p.qos, true, payload)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.onResult(topic, p.await(topic, token))
	}()

	return nil
}

func (p *MQTTPublisher) await(topic string, token mqtt.Token) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("publish to %s timed out after %v", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) logResult(topic string, err error) {
	if err != nil {
		p.logger.WarnWithError(err, "State publish failed")
		return
	}
	p.logger.Logger.Debug().Str("topic", topic).Msg("State published")
}

// Close waits for pending publishes to settle, then disconnects
func (p *MQTTPublisher) Close() {
	p.inflight.Wait()
	if p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesce)
	}
	p.logger.Info("MQTT publisher closed")
}

func tlsConfig(caPath string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caPath == "" {
		return cfg, nil
	}

	caPEM, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no certificates found in %s", caPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

var _ interfaces.StatePublisher = (*MQTTPublisher)(nil)
