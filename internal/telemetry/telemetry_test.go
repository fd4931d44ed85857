package telemetry

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

func stepWith(a satellite.Action, gyro float64, ticks int) episode.Step {
	var obs satellite.Observation
	obs.Gyros[0] = gyro
	obs.TicksSinceReading = ticks
	return episode.Step{Index: 4, Action: a, Observation: obs}
}

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	c.OnStep(stepWith(satellite.ClockwiseTorque, 0.2, 3))
	c.OnStep(stepWith(satellite.ClockwiseTorque, -0.0004, 0))
	c.OnStep(stepWith(satellite.Rest, 0.0001, 0))
	c.EpisodeDone()

	if got := testutil.ToFloat64(c.Steps.WithLabelValues("cw")); got != 2 {
		t.Errorf("expected 2 cw steps, got %v", got)
	}
	if got := testutil.ToFloat64(c.Steps.WithLabelValues("rest")); got != 1 {
		t.Errorf("expected 1 rest step, got %v", got)
	}
	if got := testutil.ToFloat64(c.Readings); got != 2 {
		t.Errorf("expected 2 readings, got %v", got)
	}
	if got := testutil.ToFloat64(c.Staleness); got != 0 {
		t.Errorf("expected staleness 0, got %v", got)
	}
	if got := testutil.ToFloat64(c.GyroRate); got != 0.0001 {
		t.Errorf("expected rate 0.0001, got %v", got)
	}
	if got := testutil.ToFloat64(c.Episodes); got != 1 {
		t.Errorf("expected 1 episode, got %v", got)
	}
}

func TestCollectorReregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}

	a.OnStep(stepWith(satellite.Rest, 0, 1))
	if got := testutil.ToFloat64(b.Steps.WithLabelValues("rest")); got != 1 {
		t.Errorf("collectors not shared, got %v", got)
	}
}

func TestCollectorHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c.OnStep(stepWith(satellite.CounterClockwiseTorque, 0.1, 2))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `satsim_steps_total{action="ccw"} 1`) {
		t.Errorf("metrics output missing step counter:\n%s", body)
	}
}

type fakeToken struct {
	err     error
	timeout bool
}

func (f *fakeToken) Wait() bool                     { return !f.timeout }
func (f *fakeToken) WaitTimeout(time.Duration) bool { return !f.timeout }
func (f *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f *fakeToken) Error() error { return f.err }

type fakeClient struct {
	topics   []string
	payloads [][]byte
	token    *fakeToken
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return f.token
}

func TestPublisherFrames(t *testing.T) {
	client := &fakeClient{token: &fakeToken{}}
	p := NewPublisher(client, "sat/tm", "run-1", nil)

	p.OnStep(stepWith(satellite.CounterClockwiseTorque, 0.25, 7))

	if p.Published != 1 || p.Failed != 0 {
		t.Fatalf("published=%d failed=%d", p.Published, p.Failed)
	}
	if client.topics[0] != "sat/tm" {
		t.Errorf("unexpected topic %q", client.topics[0])
	}

	var f Frame
	if err := json.Unmarshal(client.payloads[0], &f); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if f.Run != "run-1" || f.Step != 4 || f.Action != "ccw" || f.Gyros[0] != 0.25 || f.TicksSinceReading != 7 {
		t.Errorf("unexpected frame %+v", f)
	}
}

func TestPublisherFailures(t *testing.T) {
	tests := []struct {
		name  string
		token *fakeToken
	}{
		{"broker error", &fakeToken{err: errors.New("not connected")}},
		{"timeout", &fakeToken{timeout: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublisher(&fakeClient{token: tt.token}, "t", "", nil)
			p.OnStep(stepWith(satellite.Rest, 0, 0))
			if p.Failed != 1 || p.Published != 0 {
				t.Errorf("published=%d failed=%d", p.Published, p.Failed)
			}
		})
	}
}
