package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/ingest"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/storage"
	"github.com/hoopsight/hoopsight/pkg/config"
	"github.com/hoopsight/hoopsight/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	seasonsFlag := flag.String("seasons", cfg.DefaultSeason, "comma-separated season start years, e.g. 2024,2025")
	outFlag := flag.String("out", cfg.DatasetPath, "output CSV path")
	limitFlag := flag.Int("limit-players-per-team", cfg.PlayersPerTeamMax, "cap players fetched per team, 0 for no cap")
	sleepFlag := flag.Duration("sleep", cfg.PlayerFetchSleep, "pause between player fetches")
	toDB := flag.Bool("to-db", false, "write rows to the database instead of CSV")
	flag.Parse()

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.StandardLogger()

	// A dataset build without credentials would retry every request to
	// exhaustion, so refuse to start.
	if err := cfg.ValidateCredentials(); err != nil {
		logrus.Fatalf("Cannot build dataset: %v", err)
	}

	seasons := splitSeasons(*seasonsFlag)
	if len(seasons) == 0 {
		logrus.Fatal("No seasons given")
	}

	var sink ingest.RowSink
	var flush func() error
	var store *storage.Store

	if *toDB {
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		store = storage.NewStore(db.DB, logger)
		if err := store.AutoMigrate(); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
		sink = store
	} else {
		if dir := filepath.Dir(*outFlag); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logrus.Fatalf("Failed to create output directory: %v", err)
			}
		}
		f, err := os.Create(*outFlag)
		if err != nil {
			logrus.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()

		csvSink, err := ingest.NewCSVSink(f)
		if err != nil {
			logrus.Fatalf("Failed to initialize CSV output: %v", err)
		}
		sink = csvSink
		flush = csvSink.Flush
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C stops the build after the current request
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logrus.Warn("Interrupted, stopping dataset build...")
		cancel()
	}()

	client := providers.NewClient(cfg, logger)
	collector := ingest.NewCollector(client, logger)
	builder := ingest.NewBuilder(collector, logger, ingest.BuildOptions{
		PlayersPerTeamLimit: *limitFlag,
		SleepInterval:       *sleepFlag,
		ContinueOnError:     true,
	})

	start := time.Now()
	stats, buildErr := builder.Build(ctx, seasons, sink)

	if flush != nil {
		if err := flush(); err != nil {
			logrus.Errorf("Failed to flush output: %v", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"teams":    stats.Teams,
		"players":  stats.Players,
		"rows":     stats.Rows,
		"duration": time.Since(start).String(),
	}).Info("Dataset build finished")

	if store != nil {
		if total, err := store.CountRows(); err == nil {
			logger.WithField("total_rows", total).Info("Stored game log size")
		}
	}

	if buildErr != nil {
		logrus.Fatalf("Dataset build failed: %v", buildErr)
	}
}

func splitSeasons(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
