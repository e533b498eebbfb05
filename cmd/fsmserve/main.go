package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/fsmgrader/storage"
	"github.com/Comcast/fsmgrader/storage/bolt"
	"github.com/Comcast/fsmgrader/util"
)

func main() {

	var (
		listen      = flag.String("h", ":8080", "HTTP listen address")
		dbFilename  = flag.String("db", "", "bolt database filename (in-memory if empty)")
		logFilename = flag.String("log", "", "also log JSON to this file")
		logLevel    = flag.String("log-level", "info", "debug, info, warn, or error")
		maxLimit    = flag.Int("max-limit", 100000, "maximum step limit for a run")
		verbose     = flag.Bool("v", false, "verbose engine logging")
	)

	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
	util.Logging = *verbose

	if err := SetLevel(*logLevel); err != nil {
		log.Fatal(err)
	}
	logger, closeLog, err := NewLogger(os.Stderr, *logFilename)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store storage.Storage = storage.NewMemStorage()
	if *dbFilename != "" {
		s, err := bolt.NewStorage(*dbFilename)
		if err != nil {
			log.Fatal(err)
		}
		store = s
	}
	if err := store.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close(context.Background())

	s := &Service{
		Storage:  store,
		Log:      logger,
		MaxLimit: *maxLimit,
	}

	server := &http.Server{
		Addr:              *listen,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()

	logger.Info("listening", "addr", *listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server", "err", err)
		os.Exit(1)
	}
}
