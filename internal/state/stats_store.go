package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/maine/polymer_news/internal/news"
)

const statsTable = "category_stats"

const createStatsSQL = `
CREATE TABLE IF NOT EXISTS category_stats (
	period      TEXT    NOT NULL,
	category    TEXT    NOT NULL,
	count       INTEGER NOT NULL,
	avg_score   REAL    NOT NULL,
	top_keyword TEXT    NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (period, category)
);
`

// StatsStore хранит накопительный журнал статистики в SQLite.
// Повторная запись той же пары (period, category) заменяет прежнюю.
type StatsStore struct {
	db *sql.DB
}

// OpenStatsStore открывает (или создаёт) базу по пути path.
func OpenStatsStore(path string) (*StatsStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create stats directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats database: %w", err)
	}
	// Один коннект: иначе каждое соединение с :memory: видит свою пустую базу
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createStatsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create stats table: %w", err)
	}
	return &StatsStore{db: db}, nil
}

// Close закрывает базу.
func (s *StatsStore) Close() error {
	return s.db.Close()
}

// Append реализует app.StatsStore.
func (s *StatsStore) Append(ctx context.Context, records []news.StatRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		query, args, err := sq.Insert(statsTable).
			Columns("period", "category", "count", "avg_score", "top_keyword", "created_at").
			Values(r.Period, r.Category, r.Count, r.AvgScore, r.TopKeyword, r.CreatedAt.Unix()).
			Suffix(`ON CONFLICT(period, category) DO UPDATE SET
				count = excluded.count,
				avg_score = excluded.avg_score,
				top_keyword = excluded.top_keyword,
				created_at = excluded.created_at`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build stats upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert stats %s/%s: %w", r.Period, r.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats tx: %w", err)
	}
	return nil
}

// List возвращает журнал, новые периоды первыми. Пустой period означает все периоды.
func (s *StatsStore) List(ctx context.Context, period string) ([]news.StatRecord, error) {
	builder := sq.Select("period", "category", "count", "avg_score", "top_keyword", "created_at").
		From(statsTable).
		OrderBy("created_at DESC", "period", "category")
	if period != "" {
		builder = builder.Where(sq.Eq{"period": period})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []news.StatRecord
	for rows.Next() {
		var (
			r       news.StatRecord
			created int64
		)
		if err := rows.Scan(&r.Period, &r.Category, &r.Count, &r.AvgScore, &r.TopKeyword, &created); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return out, nil
}
