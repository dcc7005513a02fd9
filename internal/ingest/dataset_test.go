package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/models"
)

// memorySink collects rows for assertions.
type memorySink struct {
	rows []models.GameLogRecord
}

func (m *memorySink) WriteRow(rec models.GameLogRecord) error {
	m.rows = append(m.rows, rec)
	return nil
}

func TestCSVSinkColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf)
	require.NoError(t, err)

	opp := 2
	home := true
	rec := models.GameLogRecord{
		PlayerID:  237,
		GameDate:  time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC),
		TeamID:    17,
		OppTeamID: &opp,
		Home:      &home,
		Minutes:   ptr(34.5),
		Points:    ptr(28),
		Assists:   ptr(9),
		Rebounds:  ptr(7),
		FGA:       ptr(20),
		FGM:       ptr(11),
		FG3A:      ptr(6),
		FG3M:      ptr(2),
		FTA:       ptr(5),
		FTM:       ptr(4),
		Turnovers: ptr(3),
	}
	require.NoError(t, sink.WriteRow(rec))
	require.NoError(t, sink.Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.DatasetColumns, records[0])
	assert.Equal(t, []string{
		"237", "2025-01-15", "17", "2", "1",
		"34.5", "28", "9", "7", "20", "11", "6", "2", "5", "4", "3",
	}, records[1])
}

func TestCSVSinkUnknownFieldsStayEmpty(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf)
	require.NoError(t, err)

	require.NoError(t, sink.WriteRow(models.GameLogRecord{PlayerID: 1, TeamID: 2}))
	require.NoError(t, sink.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,,2,,,,,,,,,,,,,", lines[1])
}

func TestBuilderStreamsAllRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams":
			w.Write([]byte(`{"response":[
				{"id":17,"name":"Los Angeles Lakers","nbaFranchise":true,"leagues":{"standard":{"conference":"West"}}}
			]}`))
		case "/players":
			if r.URL.Query().Get("page") == "1" {
				w.Write([]byte(`{"response":[{"id":237,"firstname":"LeBron","lastname":"James"}]}`))
			} else {
				w.Write([]byte(`{"response":[]}`))
			}
		case "/players/statistics":
			w.Write([]byte(`{"response":[
				{"player":{"id":237},"team":{"id":17},"game":{"date":"2025-01-10"},"points":25,"min":"35:00"},
				{"player":{"id":237},"team":{"id":17},"game":{"date":"2025-01-12"},"points":31,"min":"38:00"}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	collector := newTestCollector(srv)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	builder := NewBuilder(collector, logger, BuildOptions{})
	sink := &memorySink{}

	stats, err := builder.Build(context.Background(), []string{"2024"}, sink)

	require.NoError(t, err)
	assert.Equal(t, BuildStats{Teams: 1, Players: 1, Rows: 2}, stats)
	require.Len(t, sink.rows, 2)
	assert.Equal(t, 237, sink.rows[0].PlayerID)
	require.NotNil(t, sink.rows[0].Points)
	assert.Equal(t, 25.0, *sink.rows[0].Points)
}

func TestBuilderPlayerLimit(t *testing.T) {
	statRequests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams":
			w.Write([]byte(`{"response":[
				{"id":1,"name":"Atlanta Hawks","nbaFranchise":true,"leagues":{"standard":{"conference":"East"}}}
			]}`))
		case "/players":
			if r.URL.Query().Get("page") == "1" {
				w.Write([]byte(`{"response":[{"id":10},{"id":11},{"id":12}]}`))
			} else {
				w.Write([]byte(`{"response":[]}`))
			}
		case "/players/statistics":
			statRequests++
			w.Write([]byte(`{"response":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	collector := newTestCollector(srv)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	builder := NewBuilder(collector, logger, BuildOptions{PlayersPerTeamLimit: 2})
	stats, err := builder.Build(context.Background(), []string{"2024"}, &memorySink{})

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Players)
	assert.Equal(t, 2, statRequests)
}
