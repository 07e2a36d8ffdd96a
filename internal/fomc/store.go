// Package fomc persists FOMC meeting decisions and the FRASER document catalog.
package fomc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errx "github.com/fredgpt/server/internal/core/error"
	logx "github.com/fredgpt/server/pkg/logger"
)

const dateLayout = "2006-01-02"

// ErrNoMeetings is returned when the meetings table is empty.
var ErrNoMeetings = errors.New("no meetings found")

// Meeting is one policy decision row keyed by its meeting identifier.
type Meeting struct {
	MeetingID         string    `gorm:"column:meeting_id;primaryKey"`
	MeetingDate       time.Time `gorm:"column:meeting_date;type:date;not null;index"`
	TargetRangeLow    *float64  `gorm:"column:target_range_low"`
	TargetRangeHigh   *float64  `gorm:"column:target_range_high"`
	IOER              *float64  `gorm:"column:ioer"`
	OnRRP             *float64  `gorm:"column:on_rrp"`
	RepoMinRate       *float64  `gorm:"column:repo_min_rate"`
	PrimaryCreditRate *float64  `gorm:"column:primary_credit_rate"`
	VotesFor          *int      `gorm:"column:votes_for"`
	VotesAgainst      *int      `gorm:"column:votes_against"`
}

func (Meeting) TableName() string { return "fomc_meetings" }

// Store reads and writes meeting rows and catalog items.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the meetings and catalog tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Meeting{}, &Item{}); err != nil {
		return errx.WrapDB(err)
	}
	return nil
}

// Upsert inserts a meeting or overwrites every non-key column of the existing row.
func (s *Store) Upsert(ctx context.Context, m *Meeting) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
	if err != nil {
		logx.Error().Err(err).Str("meeting_id", m.MeetingID).Msg("failed to upsert meeting")
		return errx.WrapDB(err)
	}
	return nil
}

// Latest returns up to limit meetings, most recent first.
func (s *Store) Latest(ctx context.Context, limit int) ([]Meeting, error) {
	var rows []Meeting
	err := s.db.WithContext(ctx).
		Order("meeting_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		logx.Error().Err(err).Msg("failed to load latest meetings")
		return nil, errx.WrapDB(err)
	}
	return rows, nil
}

// LatestPayload builds the decision card from the two most recent meetings.
func (s *Store) LatestPayload(ctx context.Context) (*Payload, error) {
	rows, err := s.Latest(ctx, 2)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errx.New(ErrNoMeetings, http.StatusNotFound, errx.DBNotFoundMessage)
	}

	latest := rows[0].View()
	var previous *MeetingView
	if len(rows) > 1 {
		p := rows[1].View()
		previous = &p
	}
	return &Payload{
		Latest:   latest,
		Previous: previous,
		Card:     FormatCard(latest, previous),
	}, nil
}
