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


package expect

import (
	"context"
	"testing"

	"github.com/Comcast/fsmgrader/core"
)

const wallSession = `
doc: The ant follows its wall.
ios:
  - inputs: "000"
    state: walk
    outputs: "10100"
  - doc: Wall on the left and ahead.
    inputs: "110"
    outputs: "01000"
  - inputs: "100"
    outputs: "00100"
`

func TestExpectBasic(t *testing.T) {
	table, err := core.WallFollowerTable()
	if err != nil {
		t.Fatal(err)
	}
	s, err := ParseSession([]byte(wallSession))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.IOs) != 3 {
		t.Fatalf("got %d IOs", len(s.IOs))
	}
	r, err := s.Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Passed() {
		t.Fatal(r.Failures[0])
	}
	if r.Ran != 3 {
		t.Fatal(r.Ran)
	}
}

func TestExpectFailure(t *testing.T) {
	table, err := core.WallFollowerTable()
	if err != nil {
		t.Fatal(err)
	}
	s := &Session{
		IOs: []IO{
			{Inputs: "000", Outputs: "00100"},
			{Inputs: "000", State: "run"},
			{Inputs: "000"},
		},
	}
	r, err := s.Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if r.Passed() || r.Ran != 1 || r.Failures[0].IO != 0 {
		t.Fatal(r)
	}

	s.KeepGoing = true
	if r, err = s.Run(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	if r.Ran != 3 || len(r.Failures) != 2 || r.Failures[1].IO != 1 {
		t.Fatal(r)
	}
}

func TestExpectMatchKinds(t *testing.T) {
	table := core.MustLoad("a 1 - | a 1\na - 1 | b 0\nb - - | a 0\n", 2, 1)

	s := &Session{
		IOs: []IO{
			{Inputs: "11", Match: "ambiguous", State: "a", Outputs: "1"},
			{Inputs: "01", State: "b"},
			{Inputs: "00", State: "a"},
			{Inputs: "00", Match: "none"},
			// The machine starts over after a NoMatch.
			{Inputs: "10", State: "a"},
		},
	}
	r, err := s.Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Passed() {
		t.Fatal(r.Failures[0])
	}

	s = &Session{IOs: []IO{{Inputs: "11"}}}
	if r, err = s.Run(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	if r.Passed() {
		t.Fatal("ambiguity should fail by default")
	}
}

func TestExpectBadSession(t *testing.T) {
	table, err := core.WallFollowerTable()
	if err != nil {
		t.Fatal(err)
	}
	for name, s := range map[string]*Session{
		"start":  {Start: "nope"},
		"inputs": {IOs: []IO{{Inputs: "0x0"}}},
		"width":  {IOs: []IO{{Inputs: "00"}}},
		"kind":   {IOs: []IO{{Inputs: "000", Match: "maybe"}}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), table); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := ParseSession([]byte("")); err == nil {
		t.Fatal("expected an error")
	}
}
