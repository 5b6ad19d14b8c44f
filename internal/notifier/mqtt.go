package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fallvision-alarm/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTOptions configures the MQTT transport.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// MQTTNotifier publishes notifications as JSON to
// <topic_prefix>/<patient_id>.
type MQTTNotifier struct {
	client      mqtt.Client
	topicPrefix string
	qos         byte
	logger      *zap.Logger
}

// NewMQTTNotifier connects to the broker and returns the transport.
func NewMQTTNotifier(opts MQTTOptions, logger *zap.Logger) (*MQTTNotifier, error) {
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client:      client,
		topicPrefix: strings.TrimSuffix(opts.TopicPrefix, "/"),
		qos:         opts.QoS,
		logger:      logger,
	}, nil
}

// Notify publishes the notification to the patient's topic.
func (m *MQTTNotifier) Notify(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", m.topicPrefix, n.PatientID)
	token := m.client.Publish(topic, m.qos, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	m.logger.Debug("Published notification",
		zap.String("notification_id", n.ID),
		zap.String("topic", topic),
	)
	return nil
}

// Close disconnects from the broker.
func (m *MQTTNotifier) Close() {
	m.client.Disconnect(250)
}
