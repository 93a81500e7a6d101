package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	pkgch "SignalFusion/pkg/clickhouse"
	applogger "SignalFusion/pkg/logger"
)

const signalInsertChunk = 2000

// CHSignalStorage keeps every analysed timeline in ClickHouse. The table is
// a ReplacingMergeTree keyed by signal identity, so re-storing the same
// timeline does not duplicate rows.
type CHSignalStorage struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

// NewCHSignalStorage creates timeline storage on table.
func NewCHSignalStorage(ch *pkgch.Client, table string, l *applogger.Logger) (*CHSignalStorage, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid signals table name %q", table)
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSignalStorage{db: ch.DB(), table: table, l: l, now: time.Now}, nil
}

func (s *CHSignalStorage) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        symbol LowCardinality(String),
        interval LowCardinality(String),
        date DateTime64(3, 'UTC'),
        idx Int32,
        family LowCardinality(String),
        type LowCardinality(String),
        strength LowCardinality(String),
        numeric_context Float64,
        stored_at DateTime64(3, 'UTC')
    ) ENGINE = ReplacingMergeTree(stored_at)
    ORDER BY (symbol, interval, family, type, date)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("init signal table: %w", err)
	}
	return nil
}

// StoreTimeline inserts entries in multi-row chunks.
func (s *CHSignalStorage) StoreTimeline(ctx context.Context, symbol string, iv domrepo.Interval, entries []models.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()
	storedAt := s.now().UTC()

	for from := 0; from < len(entries); from += signalInsertChunk {
		to := min(from+signalInsertChunk, len(entries))

		values := make([]string, 0, to-from)
		args := make([]interface{}, 0, (to-from)*9)
		for _, e := range entries[from:to] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				symbol,
				string(iv),
				e.Date.UTC(),
				int32(e.Index),
				string(e.Family),
				string(e.Type),
				string(e.Strength),
				e.NumericContext,
				storedAt,
			)
		}
		q := fmt.Sprintf(`INSERT INTO %s (symbol, interval, date, idx, family, type, strength, numeric_context, stored_at) VALUES %s`,
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_timeline error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Int("rows", to-from),
				applogger.Error(err),
			)
			return fmt.Errorf("store timeline: %w", err)
		}
	}

	s.l.Debug("clickhouse store_timeline ok",
		applogger.String("symbol", symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("rows", len(entries)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHSignalStorage) QueryTimeline(ctx context.Context, symbol string, iv domrepo.Interval, from, to time.Time, limit int) ([]models.Signal, error) {
	q := fmt.Sprintf(`
        SELECT date, idx, family, type, strength, numeric_context
        FROM %s FINAL
        WHERE symbol = ? AND interval = ? AND date >= ? AND date <= ?
        ORDER BY date DESC, family ASC, type ASC
        LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, string(iv), from.UTC(), to.UTC(), limit)
	if err != nil {
		s.l.Error("clickhouse query_timeline error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var (
			sig                   models.Signal
			idx                   int32
			family, typ, strength string
		)
		if err := rows.Scan(&sig.Date, &idx, &family, &typ, &strength, &sig.NumericContext); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Date = sig.Date.UTC()
		sig.Index = int(idx)
		sig.Family = models.Family(family)
		sig.Type = models.SignalType(typ)
		sig.Strength = models.Strength(strength)
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Close is a no-op; the ClickHouse client is owned by the caller.
func (s *CHSignalStorage) Close() error { return nil }

var _ domrepo.SignalStorage = (*CHSignalStorage)(nil)
