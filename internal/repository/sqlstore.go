package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SQLStore implements Store over database/sql. Queries are written with `?`
// placeholders and rebound for Postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open opens a store for the given driver. The schema is not touched; call
// Migrate once at startup.
func Open(driver, dsn string, maxOpenConns int) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, "sqlite", "":
		return NewSQLiteStore(dsn, maxOpenConns)
	case DriverPostgres, "postgresql":
		return NewPostgresStore(dsn, maxOpenConns)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
}

// SQLite connection options applied to every pooled connection.
var sqliteOptions = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
}

// sqliteDSN appends sqliteOptions the DSN does not set itself.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, opt := range sqliteOptions {
		key := opt[:strings.Index(opt, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		dsn += sep + opt
		sep = "&"
	}
	return dsn
}

// NewSQLiteStore creates a new SQLite store. maxOpenConns bounds the pool
// for file databases; in-memory databases always use one connection.
func NewSQLiteStore(dsn string, maxOpenConns int) (*SQLStore, error) {
	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")

	db, err := sql.Open(DriverSQLite, sqliteDSN(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to open database")
	}

	return &SQLStore{db: db, driver: DriverSQLite}, nil
}

// NewPostgresStore creates a new Postgres store and verifies the connection.
func NewPostgresStore(dsn string, maxOpenConns int) (*SQLStore, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db ping failed")
	}

	return &SQLStore{db: db, driver: DriverPostgres}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLStore) exec(ctx context.Context, q querier, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q querier, query string, args ...interface{}) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

// rebind rewrites `?` placeholders to `$n` for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// rowsAffected reports whether res touched at least one row.
func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func fromJSON(raw sql.NullString, v interface{}) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), v)
}

func now() time.Time {
	return time.Now().UTC()
}

// updateBuilder collects SET clauses for partial updates.
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (b *updateBuilder) set(column string, value interface{}) {
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

func (b *updateBuilder) build(table, where string, whereArgs ...interface{}) (string, []interface{}) {
	query := "UPDATE " + table + " SET " + strings.Join(b.sets, ", ") + " WHERE " + where
	return query, append(b.args, whereArgs...)
}

// applyUpdate runs a partial update. With nothing to set it only checks that
// the row exists.
func (s *SQLStore) applyUpdate(ctx context.Context, b *updateBuilder, table, where string, whereArgs ...interface{}) (bool, error) {
	if b.empty() {
		var one int
		err := s.queryRow(ctx, s.db, "SELECT 1 FROM "+table+" WHERE "+where, whereArgs...).Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}
	query, args := b.build(table, where, whereArgs...)
	res, err := s.exec(ctx, s.db, query, args...)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}
