package fomc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	logx "github.com/fredgpt/server/pkg/logger"
)

type meetingFile struct {
	MeetingID         string   `json:"meeting_id"`
	MeetingDate       string   `json:"meeting_date"`
	TargetRangeLow    *float64 `json:"target_range_low"`
	TargetRangeHigh   *float64 `json:"target_range_high"`
	IOER              *float64 `json:"ioer"`
	OnRRP             *float64 `json:"on_rrp"`
	RepoMinRate       *float64 `json:"repo_min_rate"`
	PrimaryCreditRate *float64 `json:"primary_credit_rate"`
	VotesFor          *int     `json:"votes_for"`
	VotesAgainst      *int     `json:"votes_against"`
}

// ParseMeeting decodes one extracted meeting document.
func ParseMeeting(r io.Reader) (*Meeting, error) {
	var f meetingFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode meeting: %w", err)
	}
	if strings.TrimSpace(f.MeetingID) == "" {
		return nil, fmt.Errorf("meeting_id is required")
	}
	date, err := time.Parse(dateLayout, f.MeetingDate)
	if err != nil {
		return nil, fmt.Errorf("meeting %s: invalid meeting_date %q: %w", f.MeetingID, f.MeetingDate, err)
	}
	return &Meeting{
		MeetingID:         f.MeetingID,
		MeetingDate:       date,
		TargetRangeLow:    f.TargetRangeLow,
		TargetRangeHigh:   f.TargetRangeHigh,
		IOER:              f.IOER,
		OnRRP:             f.OnRRP,
		RepoMinRate:       f.RepoMinRate,
		PrimaryCreditRate: f.PrimaryCreditRate,
		VotesFor:          f.VotesFor,
		VotesAgainst:      f.VotesAgainst,
	}, nil
}

// LoadMeetingsDir upserts every *.json file in dir, in name order.
func (s *Store) LoadMeetingsDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no .json files in %s", dir)
	}
	sort.Strings(paths)

	n := 0
	for _, p := range paths {
		m, err := parseMeetingFile(p)
		if err != nil {
			return n, err
		}
		if err := s.Upsert(ctx, m); err != nil {
			return n, fmt.Errorf("upsert %s: %w", filepath.Base(p), err)
		}
		logx.Info().Str("file", filepath.Base(p)).Str("meeting_id", m.MeetingID).Msg("upserted meeting")
		n++
	}
	return n, nil
}

func parseMeetingFile(path string) (*Meeting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseMeeting(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

type catalogFile struct {
	Records []json.RawMessage `json:"records"`
}

type catalogRecord struct {
	TitleInfo []struct {
		Title string `json:"title"`
	} `json:"titleInfo"`
	OriginInfo map[string]any `json:"originInfo"`
	Location   map[string]any `json:"location"`
	RecordInfo struct {
		RecordIdentifier []any `json:"recordIdentifier"`
	} `json:"recordInfo"`
}

// ParseCatalog decodes a FRASER title export into catalog items. Records
// without an identifier or title are skipped.
func ParseCatalog(r io.Reader) ([]Item, error) {
	var f catalogFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]Item, 0, len(f.Records))
	for i, raw := range f.Records {
		var rec catalogRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		id := firstString(rec.RecordInfo.RecordIdentifier)
		if id == "" || len(rec.TitleInfo) == 0 || rec.TitleInfo[0].Title == "" {
			logx.Debug().Int("index", i).Msg("skipping catalog record without id or title")
			continue
		}
		items = append(items, Item{
			ID:     id,
			Title:  rec.TitleInfo[0].Title,
			Date:   firstString(rec.OriginInfo["sortDate"], rec.OriginInfo["dateIssued"]),
			PDFURL: firstString(rec.Location["pdfUrl"]),
			Record: string(raw),
		})
	}
	return items, nil
}

// firstString returns the first non-empty string found in the values,
// looking inside arrays.
func firstString(values ...any) string {
	for _, v := range values {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		case []any:
			if s := firstString(t...); s != "" {
				return s
			}
		}
	}
	return ""
}

// LoadCatalogFile inserts the items of a FRASER export, skipping known ids.
func (s *Store) LoadCatalogFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	items, err := ParseCatalog(f)
	if err != nil {
		return 0, err
	}
	return s.AddItems(ctx, items)
}
