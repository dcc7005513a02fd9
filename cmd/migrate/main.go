package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/storage"
	"github.com/hoopsight/hoopsight/pkg/config"
	"github.com/hoopsight/hoopsight/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|import <csv>]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := storage.NewStore(db.DB, logrus.StandardLogger())

	command := os.Args[1]

	switch command {
	case "up":
		if err := store.AutoMigrate(); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := db.Migrator().DropTable(&models.GameLog{}); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate import <csv>")
		}
		if err := store.AutoMigrate(); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		rows, err := importCSV(store, os.Args[2])
		if err != nil {
			logrus.Fatalf("Failed to import dataset: %v", err)
		}
		logrus.Infof("Imported %d game log rows", rows)

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

// importCSV loads a previously built dataset file into the database.
func importCSV(store *storage.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range models.DatasetColumns {
		if _, ok := idx[col]; !ok {
			return 0, fmt.Errorf("dataset is missing column %q", col)
		}
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("row %d: %w", rows+1, err)
		}

		rec, err := parseRow(record, idx)
		if err != nil {
			return rows, fmt.Errorf("row %d: %w", rows+1, err)
		}
		if err := store.WriteRow(rec); err != nil {
			return rows, fmt.Errorf("row %d: %w", rows+1, err)
		}
		rows++
	}
	return rows, nil
}

func parseRow(record []string, idx map[string]int) (models.GameLogRecord, error) {
	field := func(col string) string { return record[idx[col]] }

	playerID, err := strconv.Atoi(field("player_id"))
	if err != nil {
		return models.GameLogRecord{}, fmt.Errorf("bad player_id: %w", err)
	}
	teamID, err := strconv.Atoi(field("team_id"))
	if err != nil {
		return models.GameLogRecord{}, fmt.Errorf("bad team_id: %w", err)
	}
	gameDate, err := time.Parse("2006-01-02", field("game_date"))
	if err != nil {
		return models.GameLogRecord{}, fmt.Errorf("bad game_date: %w", err)
	}

	rec := models.GameLogRecord{
		PlayerID:  playerID,
		TeamID:    teamID,
		GameDate:  gameDate,
		OppTeamID: parseOptInt(field("opp_team_id")),
		Home:      parseOptBool(field("home")),
		Minutes:   parseOptFloat(field("minutes")),
		Points:    parseOptFloat(field("pts")),
		Assists:   parseOptFloat(field("ast")),
		Rebounds:  parseOptFloat(field("reb")),
		FGA:       parseOptFloat(field("fga")),
		FGM:       parseOptFloat(field("fgm")),
		FG3A:      parseOptFloat(field("fg3a")),
		FG3M:      parseOptFloat(field("fg3m")),
		FTA:       parseOptFloat(field("fta")),
		FTM:       parseOptFloat(field("ftm")),
		Turnovers: parseOptFloat(field("tov")),
	}
	return rec, nil
}

func parseOptInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptBool(s string) *bool {
	switch s {
	case "1":
		v := true
		return &v
	case "0":
		v := false
		return &v
	default:
		return nil
	}
}
