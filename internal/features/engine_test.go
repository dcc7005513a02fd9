package features

import (
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/models"
)

func testEngine() *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEngine(logger)
}

// fullGame builds a record with every tracked statistic defined.
func fullGame(day int, pts float64) models.GameLogRecord {
	home := day%2 == 0
	return models.GameLogRecord{
		PlayerID:  1,
		GameDate:  time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		TeamID:    17,
		Home:      &home,
		Minutes:   fptr(30),
		Points:    &pts,
		Assists:   fptr(5),
		Rebounds:  fptr(6),
		FGA:       fptr(10),
		FGM:       fptr(5),
		FG3A:      fptr(4),
		FG3M:      fptr(1),
		FTA:       fptr(4),
		FTM:       fptr(3),
		Turnovers: fptr(2),
	}
}

func fptr(v float64) *float64 {
	return &v
}

func TestDeriveTableIsLeakageFree(t *testing.T) {
	history := []models.GameLogRecord{
		fullGame(1, 10),
		fullGame(3, 20),
		fullGame(5, 30),
		fullGame(7, 40),
		fullGame(9, 1000),
	}

	rows := testEngine().DeriveTable(history)
	require.Len(t, rows, 5)

	// First game has no priors at all.
	for name, v := range rows[0].Features {
		assert.Nil(t, v, "feature %s of the first game must be undefined", name)
	}

	// The outlier at index 4 must not influence its own features.
	last := rows[4].Features
	require.NotNil(t, last["pts_rmean_3"])
	assert.InDelta(t, 30.0, *last["pts_rmean_3"], 1e-9)
	require.NotNil(t, last["pts_rmean_5"])
	assert.InDelta(t, 25.0, *last["pts_rmean_5"], 1e-9)
}

func TestRollingStdNeedsTwoPriors(t *testing.T) {
	history := []models.GameLogRecord{
		fullGame(1, 10),
		fullGame(3, 20),
		fullGame(5, 30),
	}

	rows := testEngine().DeriveTable(history)
	require.Len(t, rows, 3)

	require.NotNil(t, rows[1].Features["pts_rmean_3"])
	assert.InDelta(t, 10.0, *rows[1].Features["pts_rmean_3"], 1e-9)
	assert.Nil(t, rows[1].Features["pts_rstd_3"], "one prior observation cannot have a sample std")

	require.NotNil(t, rows[2].Features["pts_rstd_3"])
	assert.InDelta(t, math.Sqrt(50), *rows[2].Features["pts_rstd_3"], 1e-9)
}

func TestRollingMeanSkipsMissingValues(t *testing.T) {
	gapped := fullGame(3, 0)
	gapped.Points = nil

	history := []models.GameLogRecord{
		fullGame(1, 10),
		gapped,
		fullGame(5, 30),
		fullGame(7, 40),
	}

	rows := testEngine().DeriveTable(history)
	require.Len(t, rows, 4)

	// Window of 3 priors holds {10, nil, 30}; the nil is skipped, not zeroed.
	require.NotNil(t, rows[3].Features["pts_rmean_3"])
	assert.InDelta(t, 20.0, *rows[3].Features["pts_rmean_3"], 1e-9)
}

func TestRestDays(t *testing.T) {
	history := []models.GameLogRecord{
		fullGame(1, 10),
		fullGame(6, 20),
		fullGame(6, 30),
	}

	rows := testEngine().DeriveTable(history)
	require.Len(t, rows, 3)

	assert.Equal(t, 3.0, rows[0].RestDays, "no prior game defaults to 3")
	assert.Equal(t, 5.0, rows[1].RestDays)
	assert.Equal(t, 0.0, rows[2].RestDays, "same-day doubleheader clamps to 0")
}

func TestRestDaysWithUnknownDate(t *testing.T) {
	undated := fullGame(1, 10)
	undated.GameDate = time.Time{}

	history := []models.GameLogRecord{
		undated,
		fullGame(4, 20),
	}

	rows := testEngine().DeriveTable(history)
	require.Len(t, rows, 2)
	assert.Equal(t, 3.0, rows[1].RestDays, "gap to an undated game is unknowable")
}

func TestDeriveInsufficientHistory(t *testing.T) {
	engine := testEngine()

	_, err := engine.Derive(nil)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = engine.Derive([]models.GameLogRecord{fullGame(1, 10), fullGame(3, 20)})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestDerivePicksMostRecentCompleteRow(t *testing.T) {
	history := []models.GameLogRecord{
		fullGame(1, 10),
		fullGame(3, 20),
		fullGame(5, 30),
		fullGame(8, 40),
	}

	vector, err := testEngine().Derive(history)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), vector.AsOf)
	assert.InDelta(t, 20.0, vector.Values["pts_rmean_3"], 1e-9)
	assert.InDelta(t, 3.0, vector.Values["rest_days"], 1e-9)
	assert.InDelta(t, 1.0, vector.Values["home"], 1e-9)
}

func TestDeriveImputesUnknownHome(t *testing.T) {
	history := []models.GameLogRecord{
		fullGame(1, 10),
		fullGame(3, 20),
		fullGame(5, 30),
		fullGame(7, 40),
	}
	history[3].Home = nil

	vector, err := testEngine().Derive(history)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vector.Values["home"], 1e-9)
}

func TestDeriveUsesOnlyRecentHistory(t *testing.T) {
	// 15 games; only the last 10 should matter online.
	var history []models.GameLogRecord
	for i := 0; i < 15; i++ {
		history = append(history, fullGame(i+1, float64(i)))
	}

	vector, err := testEngine().Derive(history)
	require.NoError(t, err)

	// The 10-window mean at the final game covers its 9 in-window priors,
	// values 5..13, never the truncated early games.
	assert.InDelta(t, 9.0, vector.Values["pts_rmean_10"], 1e-9)
}

func TestFeatureNamesStable(t *testing.T) {
	names := FeatureNames()

	assert.Len(t, names, len(trackedColumns)*len(Windows)*2+2)
	assert.Equal(t, "minutes_rmean_3", names[0])
	assert.Equal(t, "home", names[len(names)-1])
	assert.Contains(t, names, "usage_proxy_rstd_10")
	assert.Contains(t, names, "rest_days")
}
