package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps an append-only log of briefed items, one row per item
// with the fixed column order downstream spreadsheets expect.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.BriefingStore = (*SQLiteStore)(nil)

// Open creates or opens the briefing database and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open briefing db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AppendUpdates writes one row per item, all stamped with the run id.
func (s *SQLiteStore) AppendUpdates(ctx context.Context, runID string, briefingDate time.Time, items []domain.LegalUpdateItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := sq.Insert("briefing_updates").
		Columns("run_id", "briefing_date", "source", "type", "title", "law", "importance", "pub_date", "link")
	for _, item := range items {
		builder = builder.Values(
			runID,
			briefingDate.Format("2006-01-02"),
			string(item.Source),
			item.Type,
			item.Title,
			item.Law,
			item.Importance,
			item.PubDate,
			item.Link,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert briefing rows: %w", err)
	}
	return nil
}

// RecentUpdates returns the newest rows for inspection, newest first.
func (s *SQLiteStore) RecentUpdates(ctx context.Context, limit int) ([]domain.LegalUpdateItem, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := sq.Select("source", "type", "title", "law", "importance", "pub_date", "link").
		From("briefing_updates").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query briefing rows: %w", err)
	}
	defer rows.Close()

	var items []domain.LegalUpdateItem
	for rows.Next() {
		var item domain.LegalUpdateItem
		var source string
		if err := rows.Scan(&source, &item.Type, &item.Title, &item.Law, &item.Importance, &item.PubDate, &item.Link); err != nil {
			return nil, fmt.Errorf("scan briefing row: %w", err)
		}
		item.Source = domain.Source(source)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate briefing rows: %w", err)
	}
	return items, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
