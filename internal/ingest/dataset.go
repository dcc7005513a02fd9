package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
)

// RowSink receives normalized rows one at a time. The builder never buffers
// the dataset in memory; sinks decide how rows are persisted.
type RowSink interface {
	WriteRow(rec models.GameLogRecord) error
}

// BuildOptions tune a dataset build run.
type BuildOptions struct {
	// PlayersPerTeamLimit truncates each roster for cost control. 0 means
	// no limit.
	PlayersPerTeamLimit int
	// SleepInterval is the politeness pause between per-player fetches.
	// It protects the upstream rate limit, not correctness.
	SleepInterval time.Duration
	// ContinueOnError logs and skips a failed player fetch instead of
	// aborting the whole run.
	ContinueOnError bool
}

// BuildStats summarizes a completed build run.
type BuildStats struct {
	Teams   int
	Players int
	Rows    int
}

// Builder streams one row per player-game from the upstream provider into a
// sink. Ingestion is strictly sequential: one request at a time, with the
// sleep interval as the only intentional suspension point.
type Builder struct {
	collector *Collector
	logger    *logrus.Logger
	opts      BuildOptions
}

// NewBuilder creates a dataset builder.
func NewBuilder(collector *Collector, logger *logrus.Logger, opts BuildOptions) *Builder {
	return &Builder{
		collector: collector,
		logger:    logger,
		opts:      opts,
	}
}

// Build iterates seasons in the given order, teams sorted by name within a
// season, players within a team, and writes one row per player-game. A
// player's fetch failure aborts the run unless ContinueOnError is set.
func (b *Builder) Build(ctx context.Context, seasons []string, sink RowSink) (BuildStats, error) {
	stats := BuildStats{}

	teams, err := b.collector.CollectTeams(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to collect teams: %w", err)
	}
	stats.Teams = len(teams)

	for _, season := range seasons {
		seasonLog := b.logger.WithFields(logrus.Fields{
			"component": "dataset_builder",
			"season":    season,
		})
		seasonLog.WithField("teams", len(teams)).Info("Starting season ingest")

		for _, team := range teams {
			if team.ID == 0 {
				continue
			}

			players, err := b.collector.CollectPlayers(ctx, team.ID, season)
			if err != nil {
				return stats, fmt.Errorf("failed to collect players for team %d: %w", team.ID, err)
			}
			if b.opts.PlayersPerTeamLimit > 0 && len(players) > b.opts.PlayersPerTeamLimit {
				players = players[:b.opts.PlayersPerTeamLimit]
			}

			for _, p := range players {
				pid := p.PlayerID()
				if pid == 0 {
					continue
				}
				stats.Players++

				games, err := b.collector.CollectPlayerGames(ctx, pid, season)
				if err != nil {
					if b.opts.ContinueOnError {
						seasonLog.WithField("player_id", pid).Warnf("Skipping player after fetch failure: %v", err)
						continue
					}
					return stats, fmt.Errorf("failed to collect games for player %d: %w", pid, err)
				}

				for _, g := range games {
					if err := sink.WriteRow(Normalize(g)); err != nil {
						return stats, fmt.Errorf("failed to write row for player %d: %w", pid, err)
					}
					stats.Rows++
				}

				if err := b.pause(ctx); err != nil {
					return stats, err
				}
			}
		}

		seasonLog.WithFields(logrus.Fields{
			"players": stats.Players,
			"rows":    stats.Rows,
		}).Info("Season ingest complete")
	}

	return stats, nil
}

// pause sleeps between per-player fetches, abandoning early on cancellation.
func (b *Builder) pause(ctx context.Context) error {
	if b.opts.SleepInterval <= 0 {
		return nil
	}

	timer := time.NewTimer(b.opts.SleepInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CSVSink writes rows to a CSV destination in the fixed dataset column order.
type CSVSink struct {
	w *csv.Writer
}

// NewCSVSink wraps a writer and emits the header row immediately.
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.DatasetColumns); err != nil {
		return nil, fmt.Errorf("failed to write dataset header: %w", err)
	}
	return &CSVSink{w: cw}, nil
}

// WriteRow appends one player-game row.
func (s *CSVSink) WriteRow(rec models.GameLogRecord) error {
	row := []string{
		strconv.Itoa(rec.PlayerID),
		formatDate(rec.GameDate),
		strconv.Itoa(rec.TeamID),
		formatInt(rec.OppTeamID),
		formatBool(rec.Home),
		formatFloat(rec.Minutes),
		formatFloat(rec.Points),
		formatFloat(rec.Assists),
		formatFloat(rec.Rebounds),
		formatFloat(rec.FGA),
		formatFloat(rec.FGM),
		formatFloat(rec.FG3A),
		formatFloat(rec.FG3M),
		formatFloat(rec.FTA),
		formatFloat(rec.FTM),
		formatFloat(rec.Turnovers),
	}
	return s.w.Write(row)
}

// Flush flushes buffered rows to the underlying writer.
func (s *CSVSink) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "1"
	}
	return "0"
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
