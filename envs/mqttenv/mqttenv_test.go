package mqttenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Comcast/fsmgrader/core"
)

// remote is a fake remote environment: a counter that reaches its
// goal at 2.
type remote struct {
	env   *Env
	count int
	sent  []string
}

func (r *remote) report(step int) {
	bits := "0"
	if r.count%2 == 1 {
		bits = "1"
	}
	js, _ := json.Marshal(&Sensors{Bits: bits, Goal: r.count == 2, Step: step})
	if err := r.env.receive(js); err != nil {
		panic(err)
	}
}

func (r *remote) publish(topic string, payload []byte) error {
	if topic != "rig/actuators" {
		return fmt.Errorf("topic %s", topic)
	}
	var a Actuators
	if err := json.Unmarshal(payload, &a); err != nil {
		return err
	}
	r.sent = append(r.sent, a.Bits)
	if a.Bits == "1" {
		r.count++
	}
	// A stale report first.
	r.report(a.Step - 1)
	r.report(a.Step)
	return nil
}

func TestWalk(t *testing.T) {
	r := &remote{}
	r.env = newEnv(&Options{Prefix: "rig", Timeout: time.Second, NumInputs: 1, NumOutputs: 1}, r.publish)
	r.report(0)

	m := core.NewMachine(core.MustLoad("a - | a 1\n", 1, 1))
	walked, err := m.Walk(context.Background(), r.env, nil)
	if err != nil {
		t.Fatal(err)
	}
	if walked.StoppedBecause != core.GoalReached || len(walked.Strides) != 2 || r.env.Err != nil {
		t.Fatalf("%s after %d steps (%v)", walked.StoppedBecause, len(walked.Strides), r.env.Err)
	}
	if got := walked.Strides[1].Inputs.String(); got != "1" {
		t.Fatal(got)
	}
}

func TestTimeout(t *testing.T) {
	e := newEnv(&Options{Prefix: "rig", Timeout: 10 * time.Millisecond, NumInputs: 2}, nil)
	if got := e.ReadInputs().String(); got != "00" || !errors.Is(e.Err, ErrTimeout) {
		t.Fatal(got, e.Err)
	}
}

func TestReceiveRejectsJunk(t *testing.T) {
	e := newEnv(&Options{}, nil)
	for _, payload := range []string{`nope`, `{"bits":"0x"}`} {
		if err := e.receive([]byte(payload)); err == nil {
			t.Fatal(payload)
		}
	}
}
