package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Comcast/fsmgrader/checkoff"
	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/envs/elevator"
	"github.com/Comcast/fsmgrader/envs/maze"
	"github.com/Comcast/fsmgrader/envs/mqttenv"
	"github.com/Comcast/fsmgrader/envs/scripted"
	"github.com/Comcast/fsmgrader/storage"
	"github.com/Comcast/fsmgrader/tools"
	"github.com/Comcast/fsmgrader/turing"
	"github.com/Comcast/fsmgrader/util"

	"github.com/jsccast/yaml"
)

// Job says what to grade and how.
//
//	assignment: ant1
//	author: alice
//	source: ant.tt
//	env: maze
//	worlds: [corridor.yaml, spiral.yaml]
//
// Relative filenames are relative to the job file.
type Job struct {
	Assignment string `json:"assignment" yaml:"assignment"`
	Author     string `json:"author,omitempty" yaml:"author,omitempty"`

	// Source is the filename of the table or program.
	Source string `json:"source" yaml:"source"`

	// Dialect is "table" (the default) or "turing".
	Dialect string `json:"dialect,omitempty" yaml:"dialect,omitempty"`

	// Env is "maze", "elevator", "script", or "mqtt".  Only
	// tables have environments.
	Env string `json:"env,omitempty" yaml:"env,omitempty"`

	// Worlds are maze or elevator files, each graded separately.
	Worlds []string `json:"worlds,omitempty" yaml:"worlds,omitempty"`

	// Script is the filename of a scripted environment.
	Script     string `json:"script,omitempty" yaml:"script,omitempty"`
	NumInputs  int    `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	NumOutputs int    `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	MQTT *MQTT `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`

	// Limit is the step limit for each walk or tape.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`

	dir string
}

// MQTT configures a remote environment.
type MQTT struct {
	Broker   string `json:"broker" yaml:"broker"`
	ClientId string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Prefix   string `json:"prefix" yaml:"prefix"`
	QoS      byte   `json:"qos,omitempty" yaml:"qos,omitempty"`
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

var DefaultWalkLimit = 1000

// ReadJob reads a YAML job file.
func ReadJob(filename string) (*Job, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var j Job
	if err = yaml.Unmarshal(bs, &j); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	j.dir = filepath.Dir(filename)
	if j.Dialect == "" {
		j.Dialect = storage.TableDialect
	}
	if j.Source == "" {
		return nil, fmt.Errorf("%s: no source", filename)
	}
	return &j, nil
}

func (j *Job) path(name string) string {
	if filepath.IsAbs(name) || j.dir == "" {
		return name
	}
	return filepath.Join(j.dir, name)
}

// Grade grades the job's source and returns a submission ready to
// store.
//
// Problems with the student's source (syntax errors, failed walks)
// are reported in the submission.  The returned error is for
// problems with the job itself.
func (j *Job) Grade(ctx context.Context) (*storage.Submission, error) {
	bs, err := tools.ReadFileWithInlines(j.path(j.Source))
	if err != nil {
		return nil, err
	}
	src := string(bs)

	switch j.Dialect {
	case storage.TuringDialect:
		return j.gradeProgram(ctx, src)
	case storage.TableDialect:
		return j.gradeTable(ctx, src)
	}
	return nil, fmt.Errorf("unknown dialect '%s'", j.Dialect)
}

// rejected makes a submission for source that didn't load.
func (j *Job) rejected(src string, err error) *storage.Submission {
	return &storage.Submission{
		Assignment: j.Assignment,
		Author:     j.Author,
		Dialect:    j.Dialect,
		Source:     src,
		Outcome:    err.Error(),
		At:         time.Now().UTC(),
	}
}

func (j *Job) gradeProgram(ctx context.Context, src string) (*storage.Submission, error) {
	p, ds := turing.Load(src)
	if err := ds.Err(); err != nil {
		return j.rejected(src, err), nil
	}

	r, err := turing.Grade(ctx, p, j.Limit)
	if err != nil {
		return nil, err
	}

	rec := checkoff.ForProgram(p, r)
	if j.Assignment != "" {
		rec.Assignment = j.Assignment
	}
	s := rec.Submission(j.Author, src, p.Solved)

	if err := checkoff.Verify(p); err != nil && err != checkoff.ErrNoCheckoff {
		s.Passed = false
		s.Outcome += "; " + err.Error()
	}

	return s, nil
}

// environment is what a walk needs.
type environment interface {
	core.Environment
	core.Widths
}

// environments makes one environment per world.
//
// The returned func releases them.
func (j *Job) environments(ctx context.Context) ([]environment, []string, func(), error) {
	var (
		envs    []environment
		names   []string
		release = func() {}
	)

	switch j.Env {
	case "maze":
		for _, filename := range j.Worlds {
			w, err := maze.ReadWorld(j.path(filename))
			if err != nil {
				return nil, nil, release, err
			}
			ant, err := maze.NewAnt(w)
			if err != nil {
				return nil, nil, release, fmt.Errorf("%s: %w", filename, err)
			}
			envs = append(envs, ant)
			names = append(names, w.Name)
		}

	case "elevator":
		for _, filename := range j.Worlds {
			b, err := elevator.ReadBuilding(j.path(filename))
			if err != nil {
				return nil, nil, release, err
			}
			car, err := elevator.NewCar(b)
			if err != nil {
				return nil, nil, release, fmt.Errorf("%s: %w", filename, err)
			}
			envs = append(envs, car)
			names = append(names, b.Name)
		}

	case "script":
		filename := j.path(j.Script)
		code, err := os.ReadFile(filename)
		if err != nil {
			return nil, nil, release, err
		}
		s := &scripted.Script{
			Code:       string(code),
			NumInputs:  j.NumInputs,
			NumOutputs: j.NumOutputs,
		}
		e, err := scripted.New(ctx, s, scripted.MakeFileLibraryProvider(filepath.Dir(filename)))
		if err != nil {
			return nil, nil, release, err
		}
		envs = append(envs, e)
		names = append(names, filepath.Base(j.Script))

	case "mqtt":
		if j.MQTT == nil {
			return nil, nil, release, errors.New("no mqtt configuration")
		}
		opts := &mqttenv.Options{
			Broker:     j.MQTT.Broker,
			ClientId:   j.MQTT.ClientId,
			Username:   j.MQTT.Username,
			Password:   j.MQTT.Password,
			Prefix:     j.MQTT.Prefix,
			QoS:        j.MQTT.QoS,
			NumInputs:  j.NumInputs,
			NumOutputs: j.NumOutputs,
		}
		if j.MQTT.Timeout != "" {
			d, err := time.ParseDuration(j.MQTT.Timeout)
			if err != nil {
				return nil, nil, release, err
			}
			opts.Timeout = d
		}
		e, err := mqttenv.Dial(ctx, opts)
		if err != nil {
			return nil, nil, release, err
		}
		envs = append(envs, e)
		names = append(names, opts.Prefix)
		release = e.Close

	default:
		return nil, nil, release, fmt.Errorf("unknown environment '%s'", j.Env)
	}

	if len(envs) == 0 {
		return nil, nil, release, errors.New("no worlds")
	}

	return envs, names, release, nil
}

// breaker is an environment that can stop a walk after an error.
type breaker interface {
	Breakpoint() core.Breakpoint
}

func (j *Job) gradeTable(ctx context.Context, src string) (*storage.Submission, error) {
	envs, names, release, err := j.environments(ctx)
	defer release()
	if err != nil {
		return nil, err
	}

	ninputs, noutputs := envs[0].Widths()
	for i, env := range envs[1:] {
		if ni, no := env.Widths(); ni != ninputs || no != noutputs {
			return nil, fmt.Errorf("%s has widths %d/%d but %s has %d/%d",
				names[i+1], ni, no, names[0], ninputs, noutputs)
		}
	}
	t, err := core.Load(src, ninputs, noutputs)
	if err != nil {
		return j.rejected(src, err), nil
	}

	var (
		walks  = make([]*core.Walked, 0, len(envs))
		solved = make([]bool, 0, len(envs))
	)
	for i, env := range envs {
		c := &core.Control{
			Limit:       j.Limit,
			Breakpoints: map[string]core.Breakpoint{},
		}
		if c.Limit <= 0 {
			c.Limit = DefaultWalkLimit
		}
		if b, is := env.(breaker); is {
			c.Breakpoints["env"] = b.Breakpoint()
		}
		walked, err := core.NewMachine(t).Walk(ctx, env, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		util.Logf("fsmgrade %s %s after %d steps", names[i], walked.StoppedBecause, len(walked.Strides))
		walks = append(walks, walked)
		solved = append(solved, walked.StoppedBecause == core.GoalReached)
	}

	gate := j.Env
	if len(names) == 1 {
		gate = names[0]
	}
	rec := checkoff.ForTable(t, j.Assignment, gate, walks...)
	s := rec.Submission(j.Author, src, solved)
	if n := countAmbiguities(walks); 0 < n {
		s.Outcome += fmt.Sprintf("; %d ambiguous steps", n)
	}
	return s, nil
}

func countAmbiguities(walks []*core.Walked) int {
	n := 0
	for _, w := range walks {
		n += len(w.Ambiguities())
	}
	return n
}
