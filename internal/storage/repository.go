package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tranxledger/internal/core"
	"tranxledger/internal/query"
	"tranxledger/internal/schema"

	_ "modernc.org/sqlite"
)

const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)"

var selectColumns = strings.Join(schema.Columns, ", ")

// SQLiteRepository is the durable ledger store.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository opens (creating if needed) the ledger database at
// dbPath and applies pending migrations.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StoreError{Op: "open", Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, &core.StoreError{Op: "open", Err: fmt.Errorf("open sqlite database: %w", err)}
	}

	// One connection: the store is the only writer and SQLite serializes anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &core.StoreError{Op: "open", Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, &core.StoreError{Op: "open", Err: err}
	}

	slog.InfoContext(ctx, "Ledger store opened", "db_path", dbPath)

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file the repository was opened on.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Insert appends t and returns its new row id.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Tranx) (int64, error) {
	var purpose sql.NullString
	if t.Purpose != core.PurposeNone {
		purpose = sql.NullString{String: string(t.Purpose), Valid: true}
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		schema.Table,
		schema.ColumnEpochMilliseconds,
		schema.ColumnAmount,
		schema.ColumnCurrency,
		schema.ColumnCurrencySpecifications,
		schema.ColumnPurpose,
		schema.ColumnIncoming,
		schema.ColumnTransactionIdentity,
	)
	res, err := r.db.ExecContext(ctx, stmt,
		t.Moment.EpochMillis(),
		t.Amount.Scalar(),
		t.Amount.Currency,
		t.Amount.Spec,
		purpose,
		query.IncomingFlag(t.Direction),
		t.TID,
	)
	if err != nil {
		return 0, &core.StoreError{Op: "insert", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.StoreError{Op: "insert", Err: fmt.Errorf("read row id: %w", err)}
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"tid", t.TID,
		"amount", t.Amount.String(),
		"direction", t.Direction,
		"epoch_ms", t.Moment.EpochMillis())

	return id, nil
}

// QueryFiltered returns the rows selected by p in p's order.
func (r *SQLiteRepository) QueryFiltered(ctx context.Context, p query.Predicate) ([]core.Tranx, error) {
	where, args := p.Where()
	stmt := fmt.Sprintf("SELECT %s FROM %s %s %s", selectColumns, schema.Table, where, p.OrderBy())

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &core.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var out []core.Tranx
	for rows.Next() {
		t, err := scanTranx(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "query", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "query", Err: err}
	}
	return out, nil
}

// ScanExtrema aggregates the whole table. ok is false when it is empty.
func (r *SQLiteRepository) ScanExtrema(ctx context.Context) (core.Extrema, bool, error) {
	var (
		count                int64
		minMillis, maxMillis sql.NullInt64
	)
	stmt := fmt.Sprintf("SELECT COUNT(*), MIN(%[1]s), MAX(%[1]s) FROM %[2]s", schema.ColumnEpochMilliseconds, schema.Table)
	if err := r.db.QueryRowContext(ctx, stmt).Scan(&count, &minMillis, &maxMillis); err != nil {
		return core.Extrema{}, false, &core.StoreError{Op: "scan extrema", Err: err}
	}
	if count == 0 {
		return core.Extrema{}, false, nil
	}

	minAmount, err := r.amountAt(ctx, "ASC")
	if err != nil {
		return core.Extrema{}, false, err
	}
	maxAmount, err := r.amountAt(ctx, "DESC")
	if err != nil {
		return core.Extrema{}, false, err
	}

	return core.Extrema{
		MinMoment: core.MomentFromEpochMillis(minMillis.Int64),
		MaxMoment: core.MomentFromEpochMillis(maxMillis.Int64),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
	}, true, nil
}

// amountAt returns the amount of the first row ordered by amount in dir,
// breaking ties by insertion order.
func (r *SQLiteRepository) amountAt(ctx context.Context, dir string) (core.Amount, error) {
	stmt := fmt.Sprintf("SELECT %s, %s, %s FROM %s ORDER BY %s %s, %s ASC LIMIT 1",
		schema.ColumnAmount, schema.ColumnCurrency, schema.ColumnCurrencySpecifications,
		schema.Table, schema.ColumnAmount, dir, schema.ColumnID)

	var (
		scalar   int64
		currency string
		spec     string
	)
	if err := r.db.QueryRowContext(ctx, stmt).Scan(&scalar, &currency, &spec); err != nil {
		return core.Amount{}, &core.StoreError{Op: "scan extrema", Err: err}
	}
	a := core.AmountFromScalar(currency, scalar)
	a.Spec = spec
	return a, nil
}

// Count returns the number of persisted transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+schema.Table).Scan(&n); err != nil {
		return 0, &core.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranx(row rowScanner) (core.Tranx, error) {
	var (
		t        core.Tranx
		millis   int64
		scalar   int64
		currency string
		spec     string
		purpose  sql.NullString
		incoming int64
	)
	if err := row.Scan(&t.ID, &millis, &scalar, &currency, &spec, &purpose, &incoming, &t.TID); err != nil {
		return core.Tranx{}, fmt.Errorf("scan row: %w", err)
	}

	t.Moment = core.MomentFromEpochMillis(millis)
	t.Amount = core.AmountFromScalar(currency, scalar)
	t.Amount.Spec = spec
	if purpose.Valid {
		t.Purpose = core.Purpose(purpose.String)
	}
	switch incoming {
	case 1:
		t.Direction = core.Incoming
	case 0:
		t.Direction = core.Outgoing
	default:
		return core.Tranx{}, errors.New("scan row: incoming flag out of range")
	}
	return t, nil
}
