package ingest

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/providers"
)

// maxPlayerPages bounds roster pagination. Reaching it is a safety stop, not
// an error; no real roster comes close.
const maxPlayerPages = 50

// Collector walks the team -> player -> per-game-stats hierarchy of the
// upstream provider, one request at a time.
type Collector struct {
	client *providers.Client
	logger *logrus.Logger
}

// NewCollector creates a new collector over the given client.
func NewCollector(client *providers.Client, logger *logrus.Logger) *Collector {
	return &Collector{
		client: client,
		logger: logger,
	}
}

// CollectTeams returns the NBA franchises with a standard-league conference,
// sorted by team name so that dataset builds are reproducible.
func (c *Collector) CollectTeams(ctx context.Context) ([]providers.RawTeam, error) {
	teams, err := c.client.FetchTeams(ctx)
	if err != nil {
		return nil, err
	}

	franchises := make([]providers.RawTeam, 0, len(teams))
	for _, t := range teams {
		if t.IsActiveFranchise() {
			franchises = append(franchises, t)
		}
	}

	sort.Slice(franchises, func(i, j int) bool {
		return franchises[i].Name < franchises[j].Name
	})

	c.logger.WithFields(logrus.Fields{
		"component": "collector",
		"total":     len(teams),
		"retained":  len(franchises),
	}).Debug("Collected team list")

	return franchises, nil
}

// CollectPlayers returns a team's full roster for a season, walking the
// paginated endpoint until an empty page or the page cap.
func (c *Collector) CollectPlayers(ctx context.Context, teamID int, season string) ([]providers.RawPlayer, error) {
	var players []providers.RawPlayer

	for page := 1; ; page++ {
		batch, err := c.client.FetchPlayersPage(ctx, teamID, season, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		players = append(players, batch...)

		if page >= maxPlayerPages {
			c.logger.WithFields(logrus.Fields{
				"component": "collector",
				"team_id":   teamID,
				"season":    season,
			}).Warn("Player pagination reached safety cap, stopping traversal")
			break
		}
	}

	return players, nil
}

// CollectPlayerGames returns one player's per-game stat records for a season.
// The endpoint is unpaginated; this is a single logical request.
func (c *Collector) CollectPlayerGames(ctx context.Context, playerID int, season string) ([]providers.RawPlayerStat, error) {
	return c.client.FetchPlayerStatistics(ctx, playerID, season)
}
