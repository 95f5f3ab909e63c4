package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boilerworks/supervisor/pkg/state"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// TopicState carries the per-cycle supervisor snapshot.
const TopicState = "boiler/supervisor/state"

// TopicAlarms carries newly raised alarms.
const TopicAlarms = "boiler/supervisor/alarms"

// Publisher publishes supervisor telemetry to a broker.
type Publisher struct {
	client paho.Client
}

func NewPublisher(broker, clientID string) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Publisher{client: client}, nil
}

// StatePayload is the JSON shape on TopicState.
type StatePayload struct {
	Timestamp  string      `json:"timestamp"`
	Supervisor state.State `json:"supervisor"`
}

// AlarmPayload is the JSON shape on TopicAlarms.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	Alarm     string `json:"alarm"`
}

func FormatStatePayload(s *state.State, ts time.Time) ([]byte, error) {
	return json.Marshal(StatePayload{
		Timestamp:  ts.UTC().Format(time.RFC3339),
		Supervisor: *s,
	})
}

func (p *Publisher) PublishState(s *state.State) error {
	payload, err := FormatStatePayload(s, time.Now())
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	token := p.client.Publish(TopicState, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (p *Publisher) PublishAlarm(alarm string) error {
	payload, err := json.Marshal(AlarmPayload{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Alarm:     alarm,
	})
	if err != nil {
		return fmt.Errorf("format alarm payload: %w", err)
	}
	token := p.client.Publish(TopicAlarms, 1, false, payload)
	token.Wait()
	return token.Error()
}

func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
