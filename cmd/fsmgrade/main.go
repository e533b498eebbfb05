package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/fsmgrader/storage"
	"github.com/Comcast/fsmgrader/storage/bolt"
	"github.com/Comcast/fsmgrader/util"

	"github.com/gorhill/cronexpr"
)

func main() {

	var (
		dbFilename = flag.String("db", "", "bolt database filename (no persistence if empty)")
		cron       = flag.String("cron", "", "cron expression for re-grading (once if empty)")
		timeout    = flag.Duration("timeout", time.Minute, "timeout for each grading")
		verbose    = flag.Bool("v", false, "verbose")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] JOB.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
	util.Logging = *verbose

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store storage.Storage = &storage.NoopStorage{}
	if *dbFilename != "" {
		s, err := bolt.NewStorage(*dbFilename)
		if err != nil {
			log.Fatal(err)
		}
		s.Debug = *verbose
		store = s
	}
	if err := store.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close(ctx)

	g := &Grader{
		Storage: store,
		Timeout: *timeout,
		Out:     os.Stdout,
	}

	if *cron == "" {
		if err := g.GradeAll(ctx, flag.Args()); err != nil {
			log.Fatal(err)
		}
		return
	}

	expr, err := cronexpr.Parse(*cron)
	if err != nil {
		log.Fatalf("bad cron expression: %s", err)
	}
	if err := g.Every(ctx, expr, flag.Args()); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}

// Grader grades jobs and stores the submissions.
type Grader struct {
	Storage storage.Storage
	Timeout time.Duration
	Out     io.Writer
}

// GradeAll grades each job file once.
func (g *Grader) GradeAll(ctx context.Context, filenames []string) error {
	for _, filename := range filenames {
		j, err := ReadJob(filename)
		if err != nil {
			return err
		}
		s, err := g.grade(ctx, j)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		if g.Out != nil {
			js, err := json.Marshal(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(g.Out, "%s\n", js)
		}
	}
	return nil
}

func (g *Grader) grade(ctx context.Context, j *Job) (*storage.Submission, error) {
	if 0 < g.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	s, err := j.Grade(ctx)
	if err != nil {
		return nil, err
	}
	if err = g.Storage.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Every grades the jobs at each time given by the cron expression
// until the context is done.
//
// Job files are reread each time, so a student can keep editing.
func (g *Grader) Every(ctx context.Context, expr *cronexpr.Expression, filenames []string) error {
	for {
		next := expr.Next(time.Now())
		if next.IsZero() {
			return nil
		}
		log.Printf("next grading at %s", next.UTC().Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}
		if err := g.GradeAll(ctx, filenames); err != nil {
			// Keep going; the next run might see fixed files.
			log.Printf("grading error: %s", err)
		}
	}
}
