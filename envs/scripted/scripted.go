/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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


// Package scripted is an Environment written in ECMAScript.
//
// The script defines three global functions:
//
//	inputs()           returns the sensor bits
//	apply(bits, str)   performs the output bits (also given as a string like "0110")
//	goal()             returns true when the goal is reached
//
// Bits can be returned as an array of booleans or numbers or as a
// string like "010".  The script sees a few utilities at "_":
//
//	_.log(x)           log x as JSON
//	_.cronNext(expr)   the next time (RFC3339) for the cron expression
//	_.steps            the number of outputs applied so far
//
// The script runs in Goja (https://github.com/dop251/goja).
package scripted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/match"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is the error when a script call takes too long
	// or its context is done.
	Interrupted = errors.New(InterruptedMessage)

	// DefaultTimeout limits each call into the script.
	DefaultTimeout = time.Second
)

// LibraryProvider resolves a library name into source.
type LibraryProvider func(ctx context.Context, name string) (string, error)

// MakeFileLibraryProvider reads libraries named "file://NAME" from
// the given directory.
func MakeFileLibraryProvider(dir string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		if parts[0] != "file" {
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
		bs, err := os.ReadFile(filepath.Join(dir, filepath.Clean("/"+parts[1])))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

func MakeMapLibraryProvider(srcs map[string]string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

// Script is the source of an environment.
type Script struct {
	Code     string   `json:"code" yaml:"code"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`

	NumInputs  int `json:"inputs" yaml:"inputs"`
	NumOutputs int `json:"outputs" yaml:"outputs"`
}

// Env is a core.Environment backed by a Script.
//
// The Environment methods can't return errors, so the first error
// is kept in Err, and after that ReadInputs returns all zeros and
// the other methods do nothing.  Use Breakpoint to stop a Walk
// when that happens.
type Env struct {
	// Timeout limits each call into the script.
	Timeout time.Duration

	Err error

	ctx    context.Context
	script *Script
	rt     *goja.Runtime
	env    map[string]interface{}
	steps  int

	inputs, apply, goal goja.Callable
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// New compiles and runs the script's top level, which should define
// the three functions.
//
// The context bounds every later call into the script.
func New(ctx context.Context, s *Script, provider LibraryProvider) (*Env, error) {
	var libsSrc string
	for _, lib := range s.Requires {
		if provider == nil {
			return nil, fmt.Errorf("no provider for library '%s'", lib)
		}
		src, err := provider(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += src + "\n"
	}

	p, err := goja.Compile("", libsSrc+s.Code, true)
	if err != nil {
		return nil, err
	}

	e := &Env{
		Timeout: DefaultTimeout,
		ctx:     ctx,
		script:  s,
		rt:      goja.New(),
	}
	e.env = map[string]interface{}{
		"steps": 0,
	}

	e.env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("scripted.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	}

	e.env["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(e.rt, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(e.rt, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	e.rt.Set("_", e.env)

	if err := e.run(func() (goja.Value, error) {
		return e.rt.RunProgram(p)
	}); err != nil {
		return nil, err
	}

	for name, fn := range map[string]*goja.Callable{
		"inputs": &e.inputs,
		"apply":  &e.apply,
		"goal":   &e.goal,
	} {
		f, ok := goja.AssertFunction(e.rt.Get(name))
		if !ok {
			return nil, fmt.Errorf("script doesn't define function %s", name)
		}
		*fn = f
	}

	return e, nil
}

// run calls f with the runtime interrupted if the context is done
// or the timeout expires.
func (e *Env) run(f func() (goja.Value, error)) error {
	_, err := e.call(f)
	return err
}

func (e *Env) call(f func() (goja.Value, error)) (goja.Value, error) {
	ctx := e.ctx
	if 0 < e.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			e.rt.Interrupt(InterruptedMessage)
		case <-done:
		}
	}()

	v, err := f()
	close(done)
	<-exited
	e.rt.ClearInterrupt()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}
	return v, nil
}

func (e *Env) fail(err error) {
	if e.Err == nil {
		e.Err = err
	}
}

// Widths implements core.Widths.
func (e *Env) Widths() (int, int) {
	return e.script.NumInputs, e.script.NumOutputs
}

// ReadInputs calls the script's inputs().
func (e *Env) ReadInputs() match.Bits {
	zeros := make(match.Bits, e.script.NumInputs)
	if e.Err != nil {
		return zeros
	}
	v, err := e.call(func() (goja.Value, error) {
		return e.inputs(goja.Undefined())
	})
	if err != nil {
		e.fail(err)
		return zeros
	}
	bs, err := AsBits(v.Export())
	if err == nil && len(bs) != e.script.NumInputs {
		err = fmt.Errorf("inputs() returned %d bits, not %d", len(bs), e.script.NumInputs)
	}
	if err != nil {
		e.fail(err)
		return zeros
	}
	return bs
}

// ApplyOutputs calls the script's apply().
func (e *Env) ApplyOutputs(bs match.Bits) {
	if e.Err != nil {
		return
	}
	e.steps++
	e.env["steps"] = e.steps
	arr := make([]interface{}, len(bs))
	for i, b := range bs {
		arr[i] = b
	}
	_, err := e.call(func() (goja.Value, error) {
		return e.apply(goja.Undefined(), e.rt.ToValue(arr), e.rt.ToValue(bs.String()))
	})
	if err != nil {
		e.fail(err)
	}
}

// IsGoalReached calls the script's goal().
func (e *Env) IsGoalReached() bool {
	if e.Err != nil {
		return false
	}
	v, err := e.call(func() (goja.Value, error) {
		return e.goal(goja.Undefined())
	})
	if err != nil {
		e.fail(err)
		return false
	}
	return v.ToBoolean()
}

// Breakpoint returns a core.Breakpoint that fires once the script
// has failed.
func (e *Env) Breakpoint() core.Breakpoint {
	return func(ctx context.Context, s *core.State) bool {
		return e.Err != nil
	}
}

// AsBits converts an exported script value into Bits.
func AsBits(x interface{}) (match.Bits, error) {
	switch vv := x.(type) {
	case string:
		return match.ParseBits(vv)
	case []interface{}:
		acc := make(match.Bits, len(vv))
		for i, y := range vv {
			switch b := y.(type) {
			case bool:
				acc[i] = b
			case int64:
				acc[i] = b != 0
			case float64:
				acc[i] = b != 0
			default:
				return nil, fmt.Errorf("bit %d is a %T", i, y)
			}
		}
		return acc, nil
	}
	return nil, fmt.Errorf("can't make bits from a %T", x)
}
