package fomc

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errx "github.com/fredgpt/server/internal/core/error"
)

func ptr[T any](v T) *T { return &v }

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "fomc.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s := NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func meeting(id, date string, low, high float64) *Meeting {
	d, _ := time.Parse(dateLayout, date)
	return &Meeting{
		MeetingID:         id,
		MeetingDate:       d,
		TargetRangeLow:    ptr(low),
		TargetRangeHigh:   ptr(high),
		IOER:              ptr(high - 0.1),
		OnRRP:             ptr(low),
		RepoMinRate:       ptr(high),
		PrimaryCreditRate: ptr(high),
		VotesFor:          ptr(12),
		VotesAgainst:      ptr(0),
	}
}

func TestStore_LatestPayload_RangeChanged(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, meeting("2022-12", "2022-12-01", 4.25, 4.50)))
	require.NoError(t, s.Upsert(ctx, meeting("2023-01", "2023-01-01", 4.50, 4.75)))

	p, err := s.LatestPayload(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2023-01", p.Latest.MeetingID)
	assert.Equal(t, "2023-01-01", p.Latest.MeetingDate)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "2022-12", p.Previous.MeetingID)

	assert.Equal(t, "Federal funds target range: 4.50%–4.75%", p.Card.Headline)
	assert.Equal(t, "Vote: 12–0", p.Card.Vote)
	assert.Len(t, p.Card.Tools, 4)

	require.NotNil(t, p.Card.Changes)
	tr := p.Card.Changes.TargetRange
	assert.Equal(t, 4.25, *tr.Previous.Low)
	assert.Equal(t, 4.50, *tr.Previous.High)
	assert.Equal(t, 4.50, *tr.Current.Low)
	assert.Equal(t, 4.75, *tr.Current.High)
}

func TestStore_LatestPayload_RangeUnchanged(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, meeting("a", "2023-03-22", 4.75, 5.00)))
	require.NoError(t, s.Upsert(ctx, meeting("b", "2023-05-03", 4.75, 5.00)))

	p, err := s.LatestPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Latest.MeetingID)
	assert.Nil(t, p.Card.Changes)

	b, err := json.Marshal(p.Card)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "changes")
}

func TestStore_LatestPayload_SingleMeeting(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, meeting("only", "2024-01-31", 5.25, 5.50)))

	p, err := s.LatestPayload(ctx)
	require.NoError(t, err)
	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Card.Changes)
}

func TestStore_LatestPayload_Empty(t *testing.T) {
	s := setupStore(t)

	_, err := s.LatestPayload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMeetings)
	assert.Equal(t, http.StatusNotFound, errx.StatusOf(err))
}

func TestStore_UpsertOverwrites(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, meeting("m1", "2023-07-26", 5.00, 5.25)))
	updated := meeting("m1", "2023-07-26", 5.25, 5.50)
	updated.VotesAgainst = ptr(1)
	require.NoError(t, s.Upsert(ctx, updated))

	rows, err := s.Latest(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5.25, *rows[0].TargetRangeLow)
	assert.Equal(t, 1, *rows[0].VotesAgainst)
}

func TestStore_SearchTitles_TokenOverlap(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	n, err := s.AddItems(ctx, []Item{
		{ID: "1", Title: "Meeting, January 26-27, 2010", Date: "2010-01-27", PDFURL: "https://fraser.example/1.pdf"},
		{ID: "2", Title: "Meeting, March 16, 2010", Date: "2010-03-16"},
		{ID: "3", Title: "Minutes of the Board, 1950", Date: "1950-01-01"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	again, err := s.AddItems(ctx, []Item{{ID: "1", Title: "duplicate"}})
	require.NoError(t, err)
	assert.Zero(t, again)

	hits, err := s.SearchTitles(ctx, "Meeting, January 26-27, 2010", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, "https://fraser.example/1.pdf", hits[0].PDFURL)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "2", hits[1].ID)

	none, err := s.SearchTitles(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SearchTitles_Trigram(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("similarity(title, $1) AS score")).
		WithArgs("January 2010", "January 2010", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date", "pdf_url", "score"}).
			AddRow("1", "Meeting, January 26-27, 2010", "2010-01-27", "https://fraser.example/1.pdf", 0.62))

	hits, err := NewStore(db).SearchTitles(context.Background(), "January 2010", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Meeting, January 26-27, 2010", hits[0].Title)
	assert.InDelta(t, 0.62, hits[0].Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseCatalog(t *testing.T) {
	raw := `{"records":[
		{"titleInfo":[{"title":"Meeting, January 26-27, 2010"}],
		 "originInfo":{"sortDate":"2010-01-27"},
		 "location":{"pdfUrl":["https://fraser.example/1.pdf"]},
		 "recordInfo":{"recordIdentifier":["677-1"]}},
		{"titleInfo":[{"title":"no id"}],"recordInfo":{"recordIdentifier":[]}}
	]}`

	items, err := ParseCatalog(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "677-1", items[0].ID)
	assert.Equal(t, "2010-01-27", items[0].Date)
	assert.Equal(t, "https://fraser.example/1.pdf", items[0].PDFURL)
	assert.Contains(t, items[0].Record, "recordIdentifier")
}

func TestStore_LoadMeetingsDir(t *testing.T) {
	s := setupStore(t)
	dir := t.TempDir()

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("2023-01.json", `{"meeting_id":"2023-01","meeting_date":"2023-01-01","target_range_low":4.5,"target_range_high":4.75,"votes_for":12,"votes_against":0}`)
	write("2022-12.json", `{"meeting_id":"2022-12","meeting_date":"2022-12-01","target_range_low":4.25,"target_range_high":4.5}`)
	write("notes.txt", `ignored`)

	n, err := s.LoadMeetingsDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := s.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2023-01", rows[0].MeetingID)
	assert.Nil(t, rows[1].IOER)

	_, err = s.LoadMeetingsDir(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestParseMeeting_Invalid(t *testing.T) {
	_, err := ParseMeeting(strings.NewReader(`{"meeting_id":"","meeting_date":"2023-01-01"}`))
	assert.Error(t, err)

	_, err = ParseMeeting(strings.NewReader(`{"meeting_id":"x","meeting_date":"01/01/2023"}`))
	assert.Error(t, err)
}
