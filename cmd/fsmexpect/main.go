package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/tools"
	"github.com/Comcast/fsmgrader/tools/expect"
	"github.com/Comcast/fsmgrader/util"
)

func main() {

	var (
		tableFilename = flag.String("t", "ant.tt", "truth table filename")
		ninputs       = flag.Int("ni", 3, "number of table inputs")
		noutputs      = flag.Int("no", 5, "number of table outputs")
		keepGoing     = flag.Bool("k", false, "keep going after a failed IO")
		verbose       = flag.Bool("v", false, "verbose")
		timeout       = flag.Duration("timeout", 10*time.Second, "main timeout")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] SESSION.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
	util.Logging = *verbose

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	t, err := loadTable(*tableFilename, *ninputs, *noutputs)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, filename := range flag.Args() {
		r, err := runSession(ctx, t, filename, *keepGoing, *verbose)
		if err != nil {
			log.Fatalf("%s: %v", filename, err)
		}
		js, err := json.Marshal(r)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %s\n", filename, js)
		if !r.Passed() {
			failed++
		}
	}

	if 0 < failed {
		os.Exit(1)
	}
}

func loadTable(filename string, ninputs, noutputs int) (*core.Table, error) {
	bs, err := tools.ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return core.Load(string(bs), ninputs, noutputs)
}

func runSession(ctx context.Context, t *core.Table, filename string, keepGoing, verbose bool) (*expect.Report, error) {
	s, err := expect.ReadSession(filename)
	if err != nil {
		return nil, err
	}
	if keepGoing {
		s.KeepGoing = true
	}
	if verbose {
		s.Verbose = true
	}
	return s.Run(ctx, t)
}
