/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


// Package mqttenv is an Environment on the other side of an MQTT
// broker.
//
// The remote side publishes Sensors to PREFIX/sensors and receives
// Actuators on PREFIX/actuators.  A Sensors report says which step it
// follows, so the machine waits for a report that's at least as new
// as its last output.
package mqttenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/match"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Sensors is what the remote environment reports.
type Sensors struct {
	// Bits is a string like "010".
	Bits string `json:"bits"`
	Goal bool   `json:"goal,omitempty"`

	// Step is the number of Actuators messages the remote side
	// had seen.
	Step int `json:"step"`
}

// Actuators is what the machine sends.
type Actuators struct {
	Bits string `json:"bits"`
	Step int    `json:"step"`
}

// Options configures an Env.
type Options struct {
	// Broker is a URL like "tcp://localhost:1883".
	Broker    string
	ClientId  string
	Username  string
	Password  string
	KeepAlive time.Duration

	// Prefix is the topic prefix.
	Prefix string
	QoS    byte

	// Timeout is how long to wait for a sensor report.
	Timeout time.Duration

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	NumInputs  int
	NumOutputs int
}

var ErrTimeout = errors.New("timed out waiting for sensors")

// Env is a core.Environment.
//
// As with other remote environments, problems are kept in Err, and
// Breakpoint can stop a Walk when one happens.
type Env struct {
	Err error

	opts    *Options
	client  mqtt.Client
	publish func(topic string, payload []byte) error
	sensors chan *Sensors
	last    *Sensors
	steps   int
}

func newEnv(opts *Options, publish func(string, []byte) error) *Env {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Env{
		opts:    opts,
		publish: publish,
		sensors: make(chan *Sensors, 16),
	}
}

func (o *Options) topic(name string) string {
	return o.Prefix + "/" + name
}

// Dial connects to the broker and subscribes to the sensor topic.
func Dial(ctx context.Context, opts *Options) (*Env, error) {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientId)
	if 0 < opts.KeepAlive {
		co.SetKeepAlive(opts.KeepAlive)
	}
	co.Username = opts.Username
	co.Password = opts.Password
	co.CleanSession = true
	co.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %s", err)
	}

	e := newEnv(opts, nil)
	e.client = mqtt.NewClient(co)
	e.publish = func(topic string, payload []byte) error {
		t := e.client.Publish(topic, opts.QoS, false, payload)
		if !t.WaitTimeout(opts.Timeout) {
			return fmt.Errorf("publish to %s: %w", topic, ErrTimeout)
		}
		return t.Error()
	}

	if err := wait(ctx, e.client.Connect(), opts.Timeout); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", opts.Broker, err)
	}

	handler := func(client mqtt.Client, msg mqtt.Message) {
		if err := e.receive(msg.Payload()); err != nil {
			log.Printf("mqttenv: ignoring %s: %s", msg.Topic(), err)
		}
	}
	if err := wait(ctx, e.client.Subscribe(opts.topic("sensors"), opts.QoS, handler), opts.Timeout); err != nil {
		e.client.Disconnect(opts.Quiesce)
		return nil, err
	}

	return e, nil
}

func wait(ctx context.Context, t mqtt.Token, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !t.WaitTimeout(100 * time.Millisecond) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
	}
	return t.Error()
}

// Close disconnects from the broker.
func (e *Env) Close() {
	if e.client != nil {
		e.client.Disconnect(e.opts.Quiesce)
	}
}

// receive queues a sensor report.
func (e *Env) receive(payload []byte) error {
	var s Sensors
	if err := json.Unmarshal(payload, &s); err != nil {
		return err
	}
	if _, err := match.ParseBits(s.Bits); err != nil {
		return err
	}
	select {
	case e.sensors <- &s:
		return nil
	default:
		return errors.New("sensor queue full")
	}
}

// current returns the newest report that follows the last output.
func (e *Env) current() (*Sensors, error) {
	if e.last != nil && e.steps <= e.last.Step {
		return e.last, nil
	}
	timer := time.NewTimer(e.opts.Timeout)
	defer timer.Stop()
	for {
		select {
		case s := <-e.sensors:
			if e.steps <= s.Step {
				e.last = s
				return s, nil
			}
		case <-timer.C:
			return nil, fmt.Errorf("%w after step %d", ErrTimeout, e.steps)
		}
	}
}

func (e *Env) fail(err error) {
	if e.Err == nil {
		e.Err = err
	}
}

func (e *Env) Widths() (int, int) {
	return e.opts.NumInputs, e.opts.NumOutputs
}

func (e *Env) ReadInputs() match.Bits {
	zeros := make(match.Bits, e.opts.NumInputs)
	if e.Err != nil {
		return zeros
	}
	s, err := e.current()
	if err != nil {
		e.fail(err)
		return zeros
	}
	bs, _ := match.ParseBits(s.Bits)
	return bs
}

func (e *Env) ApplyOutputs(bs match.Bits) {
	if e.Err != nil {
		return
	}
	e.steps++
	js, err := json.Marshal(&Actuators{
		Bits: bs.String(),
		Step: e.steps,
	})
	if err == nil {
		err = e.publish(e.opts.topic("actuators"), js)
	}
	if err != nil {
		e.fail(err)
	}
}

func (e *Env) IsGoalReached() bool {
	if e.Err != nil {
		return false
	}
	s, err := e.current()
	if err != nil {
		e.fail(err)
		return false
	}
	return s.Goal
}

// Breakpoint returns a core.Breakpoint that fires once the Env has
// failed.
func (e *Env) Breakpoint() core.Breakpoint {
	return func(ctx context.Context, s *core.State) bool {
		return e.Err != nil
	}
}
