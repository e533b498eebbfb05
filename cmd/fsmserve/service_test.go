package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/storage"

	"github.com/gorilla/websocket"
)

const corridor = `
name: corridor
heading: e
rows:
  - "#####"
  - "#S..#"
  - "###.#"
  - "#G..#"
  - "#####"
`

const unary = `states scan
symbols 1
action scan 1 scan 1 r
action scan - *halt* 1 -
tape two [1] 1
result two 1 1 [1]
`

func newServer(t *testing.T) (*httptest.Server, *Service) {
	t.Helper()
	s := &Service{
		Storage:  storage.NewMemStorage(),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxLimit: 1000,
	}
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(s.Handler(ctx))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return server, s
}

func post(t *testing.T, url, body string, x interface{}) int {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if x != nil {
		if err := json.NewDecoder(resp.Body).Decode(x); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestLoad(t *testing.T) {
	server, _ := newServer(t)

	var res LoadResult
	if status := post(t, server.URL+"/load", core.WallFollower, &res); status != http.StatusOK {
		t.Fatal(status)
	}
	if !res.OK || res.Error != nil || res.Checksum == 0 {
		t.Fatalf("%#v", res)
	}

	res = LoadResult{}
	post(t, server.URL+"/load?inputs=3&outputs=5", "walk 0 - - | walk 1 0 1 0\n", &res)
	if res.OK || res.Error == nil || res.Error.Line != 1 {
		t.Fatalf("%#v", res)
	}

	res = LoadResult{}
	post(t, server.URL+"/load?dialect=turing", "states A\nsymbols 1\naction A 2 A 1 r\ncheckoff srv hw1 xyz\n", &res)
	if res.OK || len(res.Diagnostics) != 2 {
		t.Fatalf("%#v", res)
	}

	if status := post(t, server.URL+"/load?dialect=verilog", "", nil); status != http.StatusBadRequest {
		t.Fatal(status)
	}

	for _, q := range []string{"inputs=-1", "outputs=-1", "inputs=1000000000"} {
		if status := post(t, server.URL+"/load?"+q, core.WallFollower, nil); status != http.StatusBadRequest {
			t.Fatalf("%s: %d", q, status)
		}
	}
}

func TestGradeLimit(t *testing.T) {
	server, s := newServer(t)

	forever := "states run\nsymbols 1\naction run - run 1 r\naction run 1 run 1 r\ntape empty\n"
	for _, limit := range []string{"-1", "0", "5000"} {
		var res GradeResult
		if status := post(t, server.URL+"/grade?limit="+limit, forever, &res); status != http.StatusOK {
			t.Fatalf("%s: %d", limit, status)
		}
		if res.Report == nil || len(res.Report.Tapes) != 1 {
			t.Fatalf("%s: %#v", limit, res.Report)
		}
		if tr := res.Report.Tapes[0]; tr.Steps != s.MaxLimit || tr.Solved {
			t.Fatalf("%s: %#v", limit, tr)
		}
	}
}

func TestGradeAndList(t *testing.T) {
	server, _ := newServer(t)

	var res GradeResult
	if status := post(t, server.URL+"/grade?assignment=hw3&author=alice", unary, &res); status != http.StatusOK {
		t.Fatal(status)
	}
	if res.Submission == nil || !res.Submission.Passed || res.Submission.Id == "" {
		t.Fatalf("%#v", res.Submission)
	}
	if res.Report == nil || !res.Report.AllSolved {
		t.Fatalf("%#v", res.Report)
	}

	if status := post(t, server.URL+"/grade", "states A\naction A\n", nil); status != http.StatusUnprocessableEntity {
		t.Fatal(status)
	}

	resp, err := http.Get(server.URL + "/submissions?assignment=hw3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var subs []*storage.Submission
	if err = json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Author != "alice" {
		t.Fatalf("%#v", subs)
	}

	resp, err = http.Get(server.URL + "/submissions?assignment=hw3&id=nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatal(resp.StatusCode)
	}
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/run"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRun(t *testing.T) {
	server, _ := newServer(t)
	c := dial(t, server)

	req := &RunRequest{
		Source: core.WallFollower,
		Env:    "maze",
		World:  corridor,
	}
	if err := c.WriteJSON(req); err != nil {
		t.Fatal(err)
	}

	strides := 0
	for {
		var m RunMessage
		if err := c.ReadJSON(&m); err != nil {
			t.Fatal(err)
		}
		if m.Stride != nil {
			strides++
			continue
		}
		if m.Stopped != "GoalReached" || m.Steps != 8 || strides != 8 {
			t.Fatalf("%#v after %d strides", m, strides)
		}
		break
	}
}

func TestRunProblems(t *testing.T) {
	server, _ := newServer(t)

	for name, req := range map[string]*RunRequest{
		"syntax": {Source: "walk 0 |\n", Env: "maze", World: corridor},
		"env":    {Source: core.WallFollower, Env: "lemmings"},
		"world":  {Source: core.WallFollower, Env: "maze", World: "rows: [\"#\"]"},
	} {
		t.Run(name, func(t *testing.T) {
			c := dial(t, server)
			if err := c.WriteJSON(req); err != nil {
				t.Fatal(err)
			}
			var m RunMessage
			if err := c.ReadJSON(&m); err != nil {
				t.Fatal(err)
			}
			if m.Problem == "" {
				t.Fatalf("%#v", m)
			}
			if name == "syntax" && (m.Error == nil || m.Error.Line != 1) {
				t.Fatalf("%#v", m.Error)
			}
		})
	}
}
