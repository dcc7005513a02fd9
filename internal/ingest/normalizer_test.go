package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/providers"
)

func statFromJSON(t *testing.T, payload string) providers.RawPlayerStat {
	t.Helper()
	var raw providers.RawPlayerStat
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestNormalizeFullRecord(t *testing.T) {
	raw := statFromJSON(t, `{
		"player": {"id": 237, "firstname": "LeBron", "lastname": "James"},
		"team": {"id": 17, "name": "Los Angeles Lakers"},
		"game": {
			"id": 9001,
			"date": "2025-01-15T03:00:00.000Z",
			"teams": {"home": {"id": 17}, "visitors": {"id": 2}}
		},
		"min": "34:30",
		"points": 28,
		"assists": "9",
		"totReb": 7,
		"fgm": 11, "fga": 20,
		"tpm": 2, "tpa": 6,
		"ftm": 4, "fta": 5,
		"turnovers": 3
	}`)

	rec := Normalize(raw)

	assert.Equal(t, 237, rec.PlayerID)
	assert.Equal(t, 17, rec.TeamID)
	assert.Equal(t, 2025, rec.GameDate.Year())

	require.NotNil(t, rec.Home)
	assert.True(t, *rec.Home)
	require.NotNil(t, rec.OppTeamID)
	assert.Equal(t, 2, *rec.OppTeamID)

	require.NotNil(t, rec.Minutes)
	assert.InDelta(t, 34.5, *rec.Minutes, 1e-9)
	require.NotNil(t, rec.Points)
	assert.Equal(t, 28.0, *rec.Points)
	require.NotNil(t, rec.Assists)
	assert.Equal(t, 9.0, *rec.Assists)
	require.NotNil(t, rec.FG3A)
	assert.Equal(t, 6.0, *rec.FG3A)
}

func TestNormalizeAwayGame(t *testing.T) {
	raw := statFromJSON(t, `{
		"player": {"id": 1},
		"team": {"id": 2},
		"game": {"teams": {"home": {"id": 17}, "visitors": {"id": 2}}}
	}`)

	rec := Normalize(raw)

	require.NotNil(t, rec.Home)
	assert.False(t, *rec.Home)
	require.NotNil(t, rec.OppTeamID)
	assert.Equal(t, 17, *rec.OppTeamID)
}

func TestNormalizeUnknownSides(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "no game teams",
			payload: `{"player": {"id": 1}, "team": {"id": 2}, "game": {"id": 5}}`,
		},
		{
			name:    "no own team",
			payload: `{"player": {"id": 1}, "game": {"teams": {"home": {"id": 17}, "visitors": {"id": 2}}}}`,
		},
		{
			name:    "own team in neither slot",
			payload: `{"player": {"id": 1}, "team": {"id": 99}, "game": {"teams": {"home": {"id": 17}, "visitors": {"id": 2}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(statFromJSON(t, tt.payload))
			assert.Nil(t, rec.Home)
			assert.Nil(t, rec.OppTeamID)
		})
	}
}

func TestNormalizeMissingStatsStayNil(t *testing.T) {
	rec := Normalize(statFromJSON(t, `{"player": {"id": 1}, "team": {"id": 2}}`))

	assert.Nil(t, rec.Minutes)
	assert.Nil(t, rec.Points)
	assert.Nil(t, rec.Assists)
	assert.Nil(t, rec.Rebounds)
	assert.Nil(t, rec.Turnovers)
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  *float64
	}{
		{"mm:ss", "34:30", ptr(34.5)},
		{"mm:ss zero seconds", "12:00", ptr(12.0)},
		{"plain string", "20", ptr(20.0)},
		{"numeric", 18.0, ptr(18.0)},
		{"zero", "0:00", ptr(0.0)},
		{"garbage", "DNP", nil},
		{"bad seconds", "12:xx", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMinutes(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
