package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/satellite"
)

const publishTimeout = 250 * time.Millisecond

// Frame is the JSON payload published for each tick.
type Frame struct {
	Run                 string                            `json:"run,omitempty"`
	Step                int                               `json:"step"`
	Action              string                            `json:"action"`
	Gyros               [satellite.GyroHistoryLen]float64 `json:"gyros"`
	LastAttitudeReading float64                           `json:"last_attitude_reading"`
	TicksSinceReading   int                               `json:"ticks_since_reading"`
}

// publisher is the part of mqtt.Client the Publisher uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type Publisher struct {
	client publisher
	topic  string
	run    string
	log    logging.Logger

	Published int
	Failed    int
}

func NewPublisher(client publisher, topic, run string, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.Noop()
	}
	return &Publisher{client: client, topic: topic, run: run, log: log}
}

// Dial connects to broker and returns the connected client.
func Dial(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", broker, token.Error())
	}
	return client, nil
}

// OnStep publishes one frame. Broker failures are logged and counted; they
// never stop the episode.
func (p *Publisher) OnStep(s episode.Step) {
	payload, err := json.Marshal(Frame{
		Run:                 p.run,
		Step:                s.Index,
		Action:              s.Action.String(),
		Gyros:               s.Observation.Gyros,
		LastAttitudeReading: s.Observation.LastAttitudeReading,
		TicksSinceReading:   s.Observation.TicksSinceReading,
	})
	if err != nil {
		p.fail(s.Index, err)
		return
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.fail(s.Index, fmt.Errorf("publish timed out after %v", publishTimeout))
		return
	}
	if err := token.Error(); err != nil {
		p.fail(s.Index, err)
		return
	}
	p.Published++
}

func (p *Publisher) fail(step int, err error) {
	p.Failed++
	p.log.Warn(context.Background(), "telemetry publish failed",
		logging.String("topic", p.topic),
		logging.Int("step", step),
		logging.Err(err))
}
