package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hoopsight/hoopsight/internal/models"
)

// Store persists game-log rows. It doubles as an ingest.RowSink so dataset
// builds can stream straight into the database.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates a game-log store.
func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates or updates the game_logs table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.GameLog{}); err != nil {
		return fmt.Errorf("failed to migrate game logs: %w", err)
	}
	return nil
}

// WriteRow upserts one normalized row, keyed by (player_id, game_date). A
// rebuild over the same season updates rows in place instead of duplicating
// them.
func (s *Store) WriteRow(rec models.GameLogRecord) error {
	row := models.FromRecord(rec)
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "player_id"},
			{Name: "game_date"},
		},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert game log for player %d: %w", rec.PlayerID, err)
	}
	return nil
}

// PlayerHistory returns a player's stored game log, oldest first.
func (s *Store) PlayerHistory(playerID int) ([]models.GameLog, error) {
	var rows []models.GameLog
	err := s.db.
		Where("player_id = ?", playerID).
		Order("game_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load game log for player %d: %w", playerID, err)
	}
	return rows, nil
}

// CountRows reports the number of stored player-game rows.
func (s *Store) CountRows() (int64, error) {
	var count int64
	if err := s.db.Model(&models.GameLog{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count game logs: %w", err)
	}
	return count, nil
}
