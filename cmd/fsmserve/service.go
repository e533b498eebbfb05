package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Comcast/fsmgrader/checkoff"
	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/storage"
	"github.com/Comcast/fsmgrader/tools"
	"github.com/Comcast/fsmgrader/turing"
)

// MaxSourceSize limits request bodies.
var MaxSourceSize int64 = 1 << 20

// Service is the HTTP grading service.
type Service struct {
	Storage storage.Storage
	Log     *slog.Logger

	// MaxLimit caps step limits requested by clients.
	MaxLimit int
}

// Handler returns the service's routes.
//
// The context bounds websocket runs.
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/load", s.load)
	mux.HandleFunc("/grade", s.grade)
	mux.HandleFunc("/submissions", s.submissions)
	mux.HandleFunc("/ws/run", s.run(ctx))
	return mux
}

// LoadResult reports how loading went.
type LoadResult struct {
	OK bool `json:"ok"`

	// Error is a table's syntax error.
	Error *core.SyntaxError `json:"error,omitempty"`

	// Diagnostics are a program's problems.
	Diagnostics turing.Diagnostics `json:"diagnostics,omitempty"`

	Checksum int32 `json:"checksum"`

	Analysis interface{} `json:"analysis,omitempty"`
}

func (s *Service) reply(w http.ResponseWriter, status int, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		s.Log.Error("marshal", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func (s *Service) fail(w http.ResponseWriter, status int, err error) {
	s.Log.Warn("request failed", "status", status, "err", err)
	s.reply(w, status, map[string]string{"error": err.Error()})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", name, err)
	}
	return n, nil
}

func readSource(r *http.Request) (string, error) {
	if r.Method != http.MethodPost {
		return "", errors.New("POST the source")
	}
	bs, err := io.ReadAll(io.LimitReader(r.Body, MaxSourceSize))
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// load parses a table (?inputs=N&outputs=M) or a program
// (?dialect=turing) and reports problems and analysis.
func (s *Service) load(w http.ResponseWriter, r *http.Request) {
	src, err := readSource(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	var res LoadResult
	switch r.URL.Query().Get("dialect") {
	case "", storage.TableDialect:
		ninputs, err := intParam(r, "inputs", 3)
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		noutputs, err := intParam(r, "outputs", 5)
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		t, err := core.Load(src, ninputs, noutputs)
		if err != nil {
			var bw *core.BadWidth
			switch {
			case errors.As(err, &res.Error):
			case errors.As(err, &bw):
				s.fail(w, http.StatusBadRequest, err)
				return
			default:
				s.fail(w, http.StatusInternalServerError, err)
				return
			}
			break
		}
		res.OK = true
		res.Checksum = checkoff.TableChecksum(t)
		if res.Analysis, err = tools.Analyze(t); err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
	case storage.TuringDialect:
		p, ds := turing.Load(src)
		res.Diagnostics = ds
		if p != nil {
			res.OK = true
			res.Checksum = p.Checksum
			res.Analysis = tools.AnalyzeProgram(p)
		}
	default:
		s.fail(w, http.StatusBadRequest, errors.New("unknown dialect"))
		return
	}

	s.Log.Debug("load", "ok", res.OK, "bytes", len(src))
	s.reply(w, http.StatusOK, &res)
}

// GradeResult is the response to /grade.
type GradeResult struct {
	Submission *storage.Submission `json:"submission"`
	Report     *turing.Report      `json:"report,omitempty"`
}

// grade grades a Turing program against its own tapes and stores
// the submission.
func (s *Service) grade(w http.ResponseWriter, r *http.Request) {
	src, err := readSource(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", s.MaxLimit)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if limit <= 0 || s.MaxLimit < limit {
		limit = s.MaxLimit
	}

	p, ds := turing.Load(src)
	if err := ds.Err(); err != nil {
		s.reply(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"diagnostics": ds,
		})
		return
	}

	ctx := r.Context()
	report, err := turing.Grade(ctx, p, limit)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	rec := checkoff.ForProgram(p, report)
	if a := r.URL.Query().Get("assignment"); a != "" {
		rec.Assignment = a
	}
	sub := rec.Submission(r.URL.Query().Get("author"), src, p.Solved)
	if err := checkoff.Verify(p); err != nil && err != checkoff.ErrNoCheckoff {
		sub.Passed = false
		sub.Outcome += "; " + err.Error()
	}
	if err := s.Storage.Put(ctx, sub); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	s.Log.Info("graded", "assignment", sub.Assignment, "id", sub.Id, "passed", sub.Passed)
	s.reply(w, http.StatusOK, &GradeResult{
		Submission: sub,
		Report:     report,
	})
}

func (s *Service) submissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	assignment := q.Get("assignment")

	switch r.Method {
	case http.MethodGet:
		if id := q.Get("id"); id != "" {
			sub, err := s.Storage.Get(ctx, assignment, id)
			if errors.Is(err, storage.ErrNotFound) {
				s.fail(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				s.fail(w, http.StatusInternalServerError, err)
				return
			}
			s.reply(w, http.StatusOK, sub)
			return
		}
		subs, err := s.Storage.List(ctx, assignment)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		s.reply(w, http.StatusOK, subs)
	case http.MethodDelete:
		if err := s.Storage.Delete(ctx, assignment, q.Get("id")); err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.fail(w, http.StatusMethodNotAllowed, errors.New(r.Method))
	}
}
