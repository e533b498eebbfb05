package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/envs/elevator"
	"github.com/Comcast/fsmgrader/envs/maze"

	"github.com/gorilla/websocket"
)

// RunRequest is the first message on /ws/run.
type RunRequest struct {
	// Source is the truth table.
	Source string `json:"source"`

	// Env is "maze" or "elevator".
	Env string `json:"env"`

	// World is the YAML world or building.
	World string `json:"world"`

	Limit int `json:"limit,omitempty"`

	// DelayMs paces the strides.
	DelayMs int `json:"delayMs,omitempty"`
}

// RunControl is a later message from the client.
type RunControl struct {
	Stop bool `json:"stop,omitempty"`
}

// RunMessage is sent to the client: one per stride and then a
// final one with Stopped set.
type RunMessage struct {
	Stride      *core.Stride      `json:"stride,omitempty"`
	Stopped     string            `json:"stopped,omitempty"`
	Steps       int               `json:"steps,omitempty"`
	Ambiguities int               `json:"ambiguities,omitempty"`
	Error       *core.SyntaxError `json:"syntaxError,omitempty"`
	Problem     string            `json:"problem,omitempty"`
}

type widthsEnvironment interface {
	core.Environment
	core.Widths
}

func (req *RunRequest) environment() (widthsEnvironment, error) {
	switch req.Env {
	case "maze":
		w, err := maze.ParseWorld([]byte(req.World))
		if err != nil {
			return nil, err
		}
		ant, err := maze.NewAnt(w)
		if err != nil {
			return nil, err
		}
		return ant, nil
	case "elevator":
		b, err := elevator.ParseBuilding([]byte(req.World))
		if err != nil {
			return nil, err
		}
		car, err := elevator.NewCar(b)
		if err != nil {
			return nil, err
		}
		return car, nil
	}
	return nil, fmt.Errorf("unknown environment '%s'", req.Env)
}

var upgrader = websocket.Upgrader{}

// run walks a table through an environment, streaming each stride.
//
// The client can send {"stop":true} at any time.  The stop is seen
// between steps.
func (s *Service) run(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.Log.Warn("upgrade", "err", err)
			return
		}
		defer c.Close()

		send := func(m *RunMessage) bool {
			js, err := json.Marshal(m)
			if err != nil {
				s.Log.Error("marshal", "err", err)
				return false
			}
			if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
				s.Log.Debug("write", "err", err)
				return false
			}
			return true
		}

		var req RunRequest
		if err := c.ReadJSON(&req); err != nil {
			send(&RunMessage{Problem: "bad request: " + err.Error()})
			return
		}

		env, err := req.environment()
		if err != nil {
			send(&RunMessage{Problem: err.Error()})
			return
		}
		ninputs, noutputs := env.Widths()
		t, err := core.Load(req.Source, ninputs, noutputs)
		if err != nil {
			m := &RunMessage{Problem: err.Error()}
			if se, is := err.(*core.SyntaxError); is {
				m.Error = se
			}
			send(m)
			return
		}

		limit := req.Limit
		if limit <= 0 || s.MaxLimit < limit {
			limit = s.MaxLimit
		}
		delay := time.Duration(req.DelayMs) * time.Millisecond

		var stop atomic.Bool
		go func() {
			for {
				var ctl RunControl
				if err := c.ReadJSON(&ctl); err != nil {
					stop.Store(true)
					return
				}
				if ctl.Stop {
					stop.Store(true)
				}
			}
		}()

		control := &core.Control{
			Limit: 1,
			Breakpoints: map[string]core.Breakpoint{
				"stop": func(context.Context, *core.State) bool {
					return stop.Load()
				},
			},
		}

		s.Log.Info("run", "env", req.Env, "rows", len(t.Rows), "limit", limit)

		var (
			m           = core.NewMachine(t)
			ambiguities = 0
			reason      = core.Limited
		)
	LOOP:
		for m.State.Steps < limit {
			walked, err := m.Walk(ctx, env, control)
			if err != nil {
				send(&RunMessage{Problem: err.Error()})
				return
			}
			for _, stride := range walked.Strides {
				if stride.Ambiguous != nil {
					ambiguities++
				}
				if !send(&RunMessage{Stride: stride}) {
					return
				}
			}
			if walked.StoppedBecause != core.Limited {
				reason = walked.StoppedBecause
				break
			}
			if 0 < delay {
				select {
				case <-ctx.Done():
					reason = core.Canceled
					break LOOP
				case <-time.After(delay):
				}
			}
		}

		s.Log.Info("run done", "stopped", reason, "steps", m.State.Steps)
		send(&RunMessage{
			Stopped:     reason.String(),
			Steps:       m.State.Steps,
			Ambiguities: ambiguities,
		})
	}
}
