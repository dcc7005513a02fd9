package models

import "time"

// GameLogRecord is one player's box score for one game, normalized from the
// upstream statistics payload. Counting stats are pointers so that a stat the
// upstream omitted stays distinguishable from a genuine zero; downstream
// consumers decide whether null means zero.
type GameLogRecord struct {
	PlayerID  int
	GameDate  time.Time
	TeamID    int
	OppTeamID *int
	Home      *bool

	Minutes   *float64
	Points    *float64
	Assists   *float64
	Rebounds  *float64
	FGA       *float64
	FGM       *float64
	FG3A      *float64
	FG3M      *float64
	FTA       *float64
	FTM       *float64
	Turnovers *float64
}

// DatasetColumns is the fixed column order of the persisted game-log dataset.
// Consumers of the CSV (including the offline trainer) rely on this order.
var DatasetColumns = []string{
	"player_id", "game_date", "team_id", "opp_team_id", "home",
	"minutes", "pts", "ast", "reb", "fga", "fgm", "fg3a", "fg3m", "fta", "ftm", "tov",
}

// GameLog is the stored form of a GameLogRecord. At most one row exists per
// (player_id, game_date).
type GameLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlayerID  int       `gorm:"uniqueIndex:idx_player_game;not null" json:"player_id"`
	GameDate  time.Time `gorm:"uniqueIndex:idx_player_game;not null" json:"game_date"`
	TeamID    int       `json:"team_id"`
	OppTeamID *int      `json:"opp_team_id"`
	Home      *bool     `json:"home"`

	Minutes   *float64 `json:"minutes"`
	Points    *float64 `json:"pts"`
	Assists   *float64 `json:"ast"`
	Rebounds  *float64 `json:"reb"`
	FGA       *float64 `json:"fga"`
	FGM       *float64 `json:"fgm"`
	FG3A      *float64 `json:"fg3a"`
	FG3M      *float64 `json:"fg3m"`
	FTA       *float64 `json:"fta"`
	FTM       *float64 `json:"ftm"`
	Turnovers *float64 `json:"tov"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToRecord converts a stored row back into the in-memory record shape used by
// the feature engine.
func (g *GameLog) ToRecord() GameLogRecord {
	return GameLogRecord{
		PlayerID:  g.PlayerID,
		GameDate:  g.GameDate,
		TeamID:    g.TeamID,
		OppTeamID: g.OppTeamID,
		Home:      g.Home,
		Minutes:   g.Minutes,
		Points:    g.Points,
		Assists:   g.Assists,
		Rebounds:  g.Rebounds,
		FGA:       g.FGA,
		FGM:       g.FGM,
		FG3A:      g.FG3A,
		FG3M:      g.FG3M,
		FTA:       g.FTA,
		FTM:       g.FTM,
		Turnovers: g.Turnovers,
	}
}

// FromRecord builds a storable row from a normalized record.
func FromRecord(r GameLogRecord) GameLog {
	return GameLog{
		PlayerID:  r.PlayerID,
		GameDate:  r.GameDate,
		TeamID:    r.TeamID,
		OppTeamID: r.OppTeamID,
		Home:      r.Home,
		Minutes:   r.Minutes,
		Points:    r.Points,
		Assists:   r.Assists,
		Rebounds:  r.Rebounds,
		FGA:       r.FGA,
		FGM:       r.FGM,
		FG3A:      r.FG3A,
		FG3M:      r.FG3M,
		FTA:       r.FTA,
		FTM:       r.FTM,
		Turnovers: r.Turnovers,
	}
}
