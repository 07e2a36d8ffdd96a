package fomc

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"gorm.io/gorm/clause"

	errx "github.com/fredgpt/server/internal/core/error"
	logx "github.com/fredgpt/server/pkg/logger"
)

// DefaultTitleLimit bounds title search results.
const DefaultTitleLimit = 10

// Item is one FRASER catalog entry (a meeting transcript, minutes, statement...).
type Item struct {
	ID     string `gorm:"column:id;primaryKey" json:"id"`
	Title  string `gorm:"column:title;not null;index" json:"title"`
	Date   string `gorm:"column:date" json:"date,omitempty"`
	PDFURL string `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	Record string `gorm:"column:record" json:"-"`
}

func (Item) TableName() string { return "fomc_items" }

// TitleMatch is a ranked catalog hit.
type TitleMatch struct {
	Item
	Score float64 `json:"score" gorm:"column:score"`
}

// SearchTitles ranks catalog items against a free-text title query.
// Postgres uses pg_trgm similarity; other dialects fall back to token overlap.
func (s *Store) SearchTitles(ctx context.Context, query string, limit int) ([]TitleMatch, error) {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = DefaultTitleLimit
	}

	if s.db.Dialector.Name() == "postgres" {
		return s.searchTitlesTrigram(ctx, query, limit)
	}
	return s.searchTitlesTokens(ctx, query, limit)
}

func (s *Store) searchTitlesTrigram(ctx context.Context, query string, limit int) ([]TitleMatch, error) {
	var rows []TitleMatch
	err := s.db.WithContext(ctx).
		Raw(`SELECT id, title, date, pdf_url, similarity(title, ?) AS score
			FROM fomc_items
			WHERE title % ?
			ORDER BY score DESC, date DESC
			LIMIT ?`, query, query, limit).
		Scan(&rows).Error
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("trigram title search failed")
		return nil, errx.WrapDB(err)
	}
	return rows, nil
}

func (s *Store) searchTitlesTokens(ctx context.Context, query string, limit int) ([]TitleMatch, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []TitleMatch{}, nil
	}

	tx := s.db.WithContext(ctx).Model(&Item{})
	cond := s.db.Where("LOWER(title) LIKE ?", "%"+tokens[0]+"%")
	for _, tok := range tokens[1:] {
		cond = cond.Or("LOWER(title) LIKE ?", "%"+tok+"%")
	}

	var items []Item
	if err := tx.Where(cond).Find(&items).Error; err != nil {
		logx.Error().Err(err).Str("query", query).Msg("title search failed")
		return nil, errx.WrapDB(err)
	}

	matches := make([]TitleMatch, 0, len(items))
	for _, it := range items {
		if score := overlap(tokens, tokenize(it.Title)); score > 0 {
			matches = append(matches, TitleMatch{Item: it, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Date > matches[j].Date
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// AddItems inserts catalog items, leaving existing ids untouched.
func (s *Store) AddItems(ctx context.Context, items []Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		CreateInBatches(items, 200)
	if res.Error != nil {
		return 0, errx.WrapDB(res.Error)
	}
	return res.RowsAffected, nil
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// overlap is the share of query tokens present in the title.
func overlap(query, title []string) float64 {
	set := make(map[string]struct{}, len(title))
	for _, t := range title {
		set[t] = struct{}{}
	}
	hits := 0
	for _, q := range query {
		if _, ok := set[q]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
