package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	pkgch "SignalFusion/pkg/clickhouse"
	applogger "SignalFusion/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// barColumns is the select list shared by every bar query, in scan order.
const barColumns = `ts, open, high, low, close, volume,
        wt1, wt2, money_flow, rsi_value, rsi_state, rsi_ma, wr_short, wr_long, wr_avg`

// BarSchema returns the DDL of the bar table. Oscillator columns stay NULL
// when the provider does not compute them.
func BarSchema(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        symbol LowCardinality(String),
        interval LowCardinality(String),
        ts DateTime64(3, 'UTC'),
        open Nullable(Float64),
        high Nullable(Float64),
        low Nullable(Float64),
        close Nullable(Float64),
        volume Nullable(Float64),
        wt1 Nullable(Float64),
        wt2 Nullable(Float64),
        money_flow Nullable(Float64),
        rsi_value Nullable(Float64),
        rsi_state Nullable(Float64),
        rsi_ma Nullable(Float64),
        wr_short Nullable(Float64),
        wr_long Nullable(Float64),
        wr_avg Nullable(Float64)
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, interval, ts)`, table)
}

// CHBarStore implements BarStore backed by ClickHouse.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHBarStore reads bars from table, which must be a plain or
// database-qualified identifier.
func NewCHBarStore(ch *pkgch.Client, table string, l *applogger.Logger) (*CHBarStore, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid bars table name %q", table)
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarStore{db: ch.DB(), table: table, l: l}, nil
}

// Init creates the bar table if it does not exist.
func (s *CHBarStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, BarSchema(s.table)); err != nil {
		return fmt.Errorf("init bars table: %w", err)
	}
	return nil
}

func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time, iv domrepo.Interval) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE symbol = ? AND interval = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC`, barColumns, s.table)

	out, err := s.query(ctx, q, symbol, string(iv), from, to)
	if err != nil {
		s.l.Error("clickhouse get_bars error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("interval", string(iv)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	s.l.Debug("clickhouse get_bars ok",
		applogger.String("symbol", symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// GetLatestNBars returns the newest n bars in ascending time order.
func (s *CHBarStore) GetLatestNBars(ctx context.Context, symbol string, n int, iv domrepo.Interval) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE symbol = ? AND interval = ?
        ORDER BY ts DESC
        LIMIT ?`, barColumns, s.table)

	out, err := s.query(ctx, q, symbol, string(iv), n)
	if err != nil {
		s.l.Error("clickhouse latest_bars error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("interval", string(iv)),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.l.Debug("clickhouse latest_bars ok",
		applogger.String("symbol", symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("limit", n),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHBarStore) query(ctx context.Context, q string, args ...interface{}) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 512)
	for rows.Next() {
		var (
			b    models.Bar
			cols [14]sql.NullFloat64
		)
		dest := []interface{}{&b.Time}
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		ptrs := []**float64{
			&b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
			&b.WT1, &b.WT2, &b.MoneyFlow, &b.RSIValue, &b.RSIState, &b.RSIMA,
			&b.WRShort, &b.WRLong, &b.WRAvg,
		}
		for i, p := range ptrs {
			if cols[i].Valid {
				*p = models.Float(cols[i].Float64)
			}
		}
		b.Time = b.Time.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
