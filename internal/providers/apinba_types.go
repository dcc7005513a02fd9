package providers

import (
	"encoding/json"
	"time"
)

// api-nba response envelopes. Every endpoint wraps its payload in a
// "response" array; the envelope types below exist so decode failures are
// caught per-call rather than leaking partially-filled targets.
type teamsEnvelope struct {
	Response []RawTeam `json:"response"`
}

type playersEnvelope struct {
	Response []RawPlayer `json:"response"`
}

type statisticsEnvelope struct {
	Response []RawPlayerStat `json:"response"`
}

// RawTeam is one entry of GET /teams.
type RawTeam struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	NBAFranchise bool   `json:"nbaFranchise"`
	Leagues      struct {
		Standard struct {
			Conference string `json:"conference"`
			Division   string `json:"division"`
		} `json:"standard"`
	} `json:"leagues"`
}

// IsActiveFranchise reports whether this team is a real NBA franchise in a
// standard-league conference. The upstream list also carries all-star and
// exhibition squads, which have no conference.
func (t RawTeam) IsActiveFranchise() bool {
	return t.NBAFranchise && t.Leagues.Standard.Conference != ""
}

// RawPlayer is one entry of GET /players. Some payload variants carry the id
// at the top level, others nest it under "player".
type RawPlayer struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Player    *struct {
		ID int `json:"id"`
	} `json:"player"`
	Team *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Leagues struct {
		Standard struct {
			Jersey interface{} `json:"jersey"`
		} `json:"standard"`
	} `json:"leagues"`
}

// PlayerID resolves the player identity regardless of payload variant;
// returns 0 when absent.
func (p RawPlayer) PlayerID() int {
	if p.ID != 0 {
		return p.ID
	}
	if p.Player != nil {
		return p.Player.ID
	}
	return 0
}

// RawTeamRef is a team reference nested inside game and stat records.
type RawTeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawGame is the game object nested in a statistics record. The date field
// differs across API versions (plain string vs. {"start": ...} object), so it
// is kept raw and parsed on demand.
type RawGame struct {
	ID    int             `json:"id"`
	Date  json.RawMessage `json:"date"`
	Teams *struct {
		Home     *RawTeamRef `json:"home"`
		Visitors *RawTeamRef `json:"visitors"`
	} `json:"teams"`
}

// ParseDate extracts the game date from whichever shape the upstream sent.
// Returns a zero time when the date is absent or unparsable.
func (g *RawGame) ParseDate() time.Time {
	if g == nil || len(g.Date) == 0 {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(g.Date, &s); err != nil {
		var obj struct {
			Start string `json:"start"`
		}
		if err := json.Unmarshal(g.Date, &obj); err != nil || obj.Start == "" {
			return time.Time{}
		}
		s = obj.Start
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// RawPlayerStat is one entry of GET /players/statistics: a single player's
// box score for a single game. Counting stats arrive as numbers or strings
// depending on API version, so they stay untyped until normalization.
type RawPlayerStat struct {
	Player *struct {
		ID        int    `json:"id"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
	} `json:"player"`
	Team *RawTeamRef `json:"team"`
	Game *RawGame    `json:"game"`

	Min       interface{} `json:"min"`
	Points    interface{} `json:"points"`
	Assists   interface{} `json:"assists"`
	TotReb    interface{} `json:"totReb"`
	FGM       interface{} `json:"fgm"`
	FGA       interface{} `json:"fga"`
	TPM       interface{} `json:"tpm"`
	TPA       interface{} `json:"tpa"`
	FTM       interface{} `json:"ftm"`
	FTA       interface{} `json:"fta"`
	Turnovers interface{} `json:"turnovers"`
}
