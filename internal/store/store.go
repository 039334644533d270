package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/querysql"
	"github.com/roach88/dropscope/internal/scoring"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (tables only, as created by earlier deployments)
// 1 - Added lookup indexes on airdrops.project_id, airdrops.status, projects.chain
const currentSchemaVersion = 1

// driverName is the sqlite3 driver with dropscope's SQL functions registered.
const driverName = "sqlite3_dropscope"

// MemoryPath opens a private in-memory database (tests, `score` previews).
const MemoryPath = ":memory:"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(querysql.FoldFunc, model.FoldCase, true)
		},
	})
}

// Store provides durable storage for projects, airdrops and risk factors.
// Uses SQLite with WAL mode for concurrent read access.
//
// Thread-safety: Store is safe for concurrent use; *sql.DB pools connections
// and SQLite serializes writers.
type Store struct {
	db       *sql.DB
	path     string
	compiler *querysql.SQLCompiler
	log      *slog.Logger
}

type options struct {
	maxOpenConns int
	busyTimeout  time.Duration
	engine       *scoring.Engine
	logger       *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithMaxOpenConns sets the connection pool size. In-memory databases are
// always limited to one connection because each connection would see its
// own empty database.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithScoring overrides the scoring engine inlined into listing queries.
func WithScoring(e *scoring.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open creates or opens a SQLite database at the given path and applies the
// schema and migrations.
//
// The parent directory is created if needed. The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - Immediate transactions
//
// Any failure is returned as *ReadinessError.
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		maxOpenConns: 4,
		busyTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	memory := isMemory(path)
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &ReadinessError{Stage: StageOpen, Path: path, Err: err}
		}
	}

	db, err := sql.Open(driverName, dsn(path, o.busyTimeout))
	if err != nil {
		return nil, &ReadinessError{Stage: StageOpen, Path: path, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ReadinessError{Stage: StageOpen, Path: path, Err: err}
	}

	// SQLite has one writer; readers share the pool under WAL.
	if memory {
		o.maxOpenConns = 1
	}
	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxOpenConns)

	s := &Store{
		db:       db,
		path:     path,
		compiler: querysql.NewSQLCompiler(o.engine),
		log:      o.logger,
	}

	if err := s.checkPragmas(memory); err != nil {
		db.Close()
		return nil, &ReadinessError{Stage: StagePragma, Path: path, Err: err}
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, &ReadinessError{Stage: StageSchema, Path: path, Err: err}
	}

	return s, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates the tables if absent and runs pending migrations.
// Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := applySchemaContext(ctx, s.db); err != nil {
		return &ReadinessError{Stage: StageSchema, Path: s.path, Err: err}
	}
	return nil
}

// EnsureReady guarantees the schema exists and a cold database carries the
// example records. Safe to call before every read or write.
func (s *Store) EnsureReady(ctx context.Context) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := s.SeedIfEmpty(ctx); err != nil {
		return &ReadinessError{Stage: StageSeed, Path: s.path, Err: err}
	}
	return nil
}

func isMemory(path string) bool {
	return path == MemoryPath || strings.HasPrefix(path, "file::memory:")
}

// dsn builds a go-sqlite3 DSN. Connection pragmas go here rather than
// through Exec so every pooled connection gets them.
func dsn(path string, busyTimeout time.Duration) string {
	v := url.Values{}
	v.Set("_busy_timeout", strconv.FormatInt(busyTimeout.Milliseconds(), 10))
	v.Set("_foreign_keys", "1")
	v.Set("_journal_mode", "WAL")
	v.Set("_synchronous", "NORMAL")
	v.Set("_txlock", "immediate")
	return path + "?" + v.Encode()
}

// checkPragmas verifies the DSN pragmas took effect.
func (s *Store) checkPragmas(memory bool) error {
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		return err
	}
	if memory {
		// In-memory databases report journal_mode=memory.
		return nil
	}
	return s.verifyPragma("journal_mode", "wal")
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	return applySchemaContext(context.Background(), db)
}

func applySchemaContext(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds lookup indexes. Databases created by earlier deployments
// have the three tables but no indexes; CREATE INDEX IF NOT EXISTS makes
// this a no-op everywhere else.
func migrateToV1(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_airdrops_project_id ON airdrops(project_id);
		CREATE INDEX IF NOT EXISTS idx_airdrops_status ON airdrops(status);
		CREATE INDEX IF NOT EXISTS idx_projects_chain ON projects(chain);
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if !strings.EqualFold(value, expected) {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
