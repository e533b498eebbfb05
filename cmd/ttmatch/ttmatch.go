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

// Package main is a little command-line utility to invoke row matching.
//
//	ttmatch -t ant.tt -s walk -i 110 -w 2
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/match"
	"github.com/Comcast/fsmgrader/tools"
)

func main() {
	var (
		tableFilename = flag.String("t", "", "truth table filename")
		ninputs       = flag.Int("ni", 3, "number of inputs")
		noutputs      = flag.Int("no", 5, "number of outputs")
		state         = flag.String("s", "", "state (default: the start state)")
		inputsBits    = flag.String("i", "", "inputs like 010")
		want          = flag.Int("w", -1, "wanted row index (if any)")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")
	)

	flag.Parse()

	bs, err := tools.ReadFileWithInlines(*tableFilename)
	if err != nil {
		log.Fatal(err)
	}
	t, err := core.Load(string(bs), *ninputs, *noutputs)
	if err != nil {
		log.Fatal(err)
	}
	inputs, err := match.ParseBits(*inputsBits)
	if err != nil {
		log.Fatal(err)
	}
	if *state == "" {
		*state = t.Start()
	}

	if 0 < *bench {
		log.Println(Bench(t, *state, inputs, *bench))
	}

	r, err := t.MatchErr(*state, inputs)

	if 0 <= *want {
		ok := err == nil && r.Row == *want
		fmt.Printf("%v\n", ok)
		if !ok {
			os.Exit(1)
		}
		return
	}

	js, jerr := json.Marshal(&r)
	if jerr != nil {
		log.Fatal(jerr)
	}
	fmt.Printf("%s\n", js)
	if err != nil {
		fmt.Printf("%s\n", err)
	}
}

// Bench runs Match n times and reports the mean time and allocation.
func Bench(t *core.Table, state string, inputs match.Bits, n int) string {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	allocs := stats.TotalAlloc
	then := time.Now()
	for i := 0; i < n; i++ {
		t.Match(state, inputs)
	}
	elapsed := time.Since(then)
	meanNanos := elapsed.Nanoseconds() / int64(n)

	runtime.ReadMemStats(&stats)
	allocated := (stats.TotalAlloc - allocs) / uint64(n)

	return fmt.Sprintf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match", n, meanNanos, allocated)
}
