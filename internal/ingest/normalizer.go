package ingest

import (
	"strconv"
	"strings"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/providers"
)

// Normalize maps one raw stat record into the fixed GameLogRecord schema.
// It is pure: no I/O, no errors. Fields that cannot be derived stay nil;
// a missing stat is never turned into a zero here.
func Normalize(raw providers.RawPlayerStat) models.GameLogRecord {
	rec := models.GameLogRecord{}

	if raw.Player != nil {
		rec.PlayerID = raw.Player.ID
	}
	if raw.Team != nil {
		rec.TeamID = raw.Team.ID
	}
	if raw.Game != nil {
		rec.GameDate = raw.Game.ParseDate()
	}

	rec.OppTeamID, rec.Home = inferSides(raw)

	rec.Minutes = ParseMinutes(raw.Min)
	rec.Points = toFloat(raw.Points)
	rec.Assists = toFloat(raw.Assists)
	rec.Rebounds = toFloat(raw.TotReb)
	rec.FGA = toFloat(raw.FGA)
	rec.FGM = toFloat(raw.FGM)
	rec.FG3A = toFloat(raw.TPA)
	rec.FG3M = toFloat(raw.TPM)
	rec.FTA = toFloat(raw.FTA)
	rec.FTM = toFloat(raw.FTM)
	rec.Turnovers = toFloat(raw.Turnovers)

	return rec
}

// inferSides derives the opponent team id and the home flag by matching the
// record's own team against the game's home/visitor ids. Either stays
// unknown (nil) when the ids needed to infer it are missing.
func inferSides(raw providers.RawPlayerStat) (*int, *bool) {
	if raw.Team == nil || raw.Team.ID == 0 || raw.Game == nil || raw.Game.Teams == nil {
		return nil, nil
	}

	home := raw.Game.Teams.Home
	away := raw.Game.Teams.Visitors
	if home == nil || away == nil || home.ID == 0 || away.ID == 0 {
		return nil, nil
	}

	own := raw.Team.ID
	switch own {
	case home.ID:
		opp := away.ID
		isHome := true
		return &opp, &isHome
	case away.ID:
		opp := home.ID
		isHome := false
		return &opp, &isHome
	default:
		// Record's team is in neither slot; nothing trustworthy to infer.
		return nil, nil
	}
}

// ParseMinutes converts the upstream "min" field to fractional minutes.
// "MM:SS" strings become MM + SS/60; plain numerics parse directly; anything
// else is nil. Zero minutes and missing minutes stay distinct.
func ParseMinutes(v interface{}) *float64 {
	s, ok := v.(string)
	if ok && strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		mm, errM := strconv.ParseFloat(parts[0], 64)
		ss, errS := strconv.ParseFloat(parts[1], 64)
		if errM != nil || errS != nil {
			return nil
		}
		mins := mm + ss/60.0
		return &mins
	}
	return toFloat(v)
}

// toFloat converts the loosely-typed JSON stat values (float, int, numeric
// string) to *float64, nil when absent or unparsable.
func toFloat(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		f := val
		return &f
	case int:
		f := float64(val)
		return &f
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
