package tools

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/components/retriever"

	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/fomc"
	"github.com/fredgpt/server/internal/fred"
	"github.com/fredgpt/server/internal/search"
)

// SeriesSource is the time-series provider used by the fred_* tools.
type SeriesSource interface {
	Snapshot(ctx context.Context, seriesID string, limit int) (*fred.Snapshot, error)
	SeriesInfo(ctx context.Context, seriesID string) (*fred.SeriesInfo, error)
	Observations(ctx context.Context, seriesID string, limit int) ([]model.Point, error)
	Chart(ctx context.Context, seriesID string) (string, []byte, error)
	SeriesReleases(ctx context.Context, seriesID string) ([]fred.Release, error)
	ReleaseDates(ctx context.Context, releaseID int) ([]fred.ReleaseDate, error)
	Releases(ctx context.Context, limit int) ([]fred.Release, error)
	ReleaseSeries(ctx context.Context, releaseID, limit int) (map[string]any, error)
	ReleaseTables(ctx context.Context, releaseID int) (map[string]any, error)
	SearchSeries(ctx context.Context, query string, limit int) ([]fred.SeriesInfo, error)
}

// MeetingSource is the persisted meeting store and FRASER catalog.
type MeetingSource interface {
	LatestPayload(ctx context.Context) (*fomc.Payload, error)
	SearchTitles(ctx context.Context, query string, limit int) ([]fomc.TitleMatch, error)
}

// HybridSearcher queries the hybrid semantic/keyword index.
type HybridSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

var (
	errFredUnavailable     = errors.New("FRED client is not configured")
	errMeetingsUnavailable = errors.New("meeting store is not configured")
	errRetrievalDisabled   = errors.New("document retrieval is not configured")
)

// Adapters owns the external collaborators of the tool set. Nil collaborators
// turn their tools into structured failures instead of panics.
type Adapters struct {
	Fred      SeriesSource
	Meetings  MeetingSource
	Search    HybridSearcher
	Retriever retriever.Retriever

	// Now stamps release schedules; defaults to time.Now.
	Now func() time.Time
}

func (a *Adapters) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
