/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/fsmgrader/core"
	. "github.com/Comcast/fsmgrader/util/testutil"
)

func setup(t *testing.T) (string, *Host, *bytes.Buffer) {
	dir := t.TempDir()
	fs := map[string]string{
		"ant.tt": core.WallFollower,
		"corridor.yaml": Src(
			"name: corridor",
			"heading: e",
			"rows:",
			`  - "#####"`,
			`  - "#S..#"`,
			`  - "###.#"`,
			`  - "#G..#"`,
			`  - "#####"`,
		),
		"unary.tm": Src(
			"states scan",
			"symbols 1",
			"action scan 1 scan 1 r",
			"action scan - *halt* 1 -",
			"tape two [1] 1",
			"result two 1 1 [1]",
		),
	}
	for name, content := range fs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	out := &bytes.Buffer{}
	return dir, NewHost(out), out
}

func script(dir string, lines ...string) string {
	return strings.Replace(Src(lines...), "DIR", dir, -1)
}

func TestTableSession(t *testing.T) {
	dir, h, out := setup(t)
	err := h.Run(context.Background(), strings.NewReader(script(dir,
		"table DIR/ant.tt",
		"world maze DIR/corridor.yaml",
		"step 2",
		"run",
		"inputs 110",
		"inputs 00",
		"state lost",
	)))
	if err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		"# table has 3 rows; state walk\n",
		"# maze DIR/corridor.yaml: 3 inputs, 5 outputs\n",
		"# stopped: GoalReached in walk\n",
		"# walk 1 1 0 | walk 0 1 0 0 0  (line 7)\n",
		"# error: ",
		"# error: no state 'lost'\n",
	} {
		want = strings.Replace(want, "DIR", dir, -1)
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in\n%s", want, s)
		}
	}
	if n := strings.Count(s, "(line "); n != 9 {
		t.Fatalf("%d strides in\n%s", n, s)
	}
}

func TestProgramSession(t *testing.T) {
	dir, h, out := setup(t)
	err := h.Run(context.Background(), strings.NewReader(script(dir,
		"program DIR/unary.tm",
		"tape two",
		"step",
		"run",
		"grade",
		"tape three",
		"frobnicate",
	)))
	if err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		"# program has 3 states, 1 tapes; checksum ",
		"# tape two: [1] 1\n",
		"# halted after 3 steps: 1 1 [1]\n",
		"# all solved: true\n",
		"# error: no tape 'three'\n",
		"# error: unsupported command: frobnicate\n",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in\n%s", want, s)
		}
	}
}
