// Package journal records editor transitions per session in an in-memory
// DuckDB database so a session's history can be paged through.
package journal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
)

// Recorder is what the session layer needs from a journal.
type Recorder interface {
	Record(ctx context.Context, t models.Transition) (models.Transition, error)
	List(ctx context.Context, sessionID string, page, pageSize int) ([]models.Transition, int, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}

var (
	_ Recorder = (*DuckJournal)(nil)
	_ Recorder = Nop{}
)

// Options tunes the DuckDB instance.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DefaultOptions keeps the journal small; it only ever holds short rows.
var DefaultOptions = Options{Threads: 1, MemoryLimit: "256MB"}

// DuckJournal is a Recorder backed by an in-memory DuckDB database shared
// by all sessions. Nothing outlives the process.
type DuckJournal struct {
	db     *sql.DB
	logger *log.Logger

	mu  sync.Mutex
	seq map[string]int64
}

// Open creates the in-memory database and its table.
func Open(opts Options, logger *log.Logger) (*DuckJournal, error) {
	if opts.Threads <= 0 {
		opts.Threads = DefaultOptions.Threads
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = DefaultOptions.MemoryLimit
	}

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return errors.Wrapf(err, "exec %q", pragma)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "create duckdb connector")
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE transitions (
			session_id   VARCHAR NOT NULL,
			seq          BIGINT NOT NULL,
			at_us        BIGINT NOT NULL,
			op           VARCHAR NOT NULL,
			component_id VARCHAR,
			detail       VARCHAR,
			accepted     BOOLEAN NOT NULL,
			advisory     VARCHAR,
			revision     INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create transitions table")
	}

	logger.Debug("journal ready", "threads", opts.Threads, "memory", opts.MemoryLimit)
	return &DuckJournal{db: db, logger: logger, seq: make(map[string]int64)}, nil
}

// Record stores t, assigning its sequence number and timestamp when unset.
func (j *DuckJournal) Record(ctx context.Context, t models.Transition) (models.Transition, error) {
	j.mu.Lock()
	j.seq[t.SessionID]++
	t.Seq = j.seq[t.SessionID]
	j.mu.Unlock()
	if t.At.IsZero() {
		t.At = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transitions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Seq, t.At.UnixMicro(), t.Op, t.ComponentID, t.Detail, t.Accepted, t.Advisory, t.Revision,
	)
	if err != nil {
		return t, errors.Wrapf(err, "record %s for session %s", t.Op, t.SessionID)
	}
	return t, nil
}

// List returns one page of a session's transitions in sequence order, plus
// the session's total count. Pages start at 1.
func (j *DuckJournal) List(ctx context.Context, sessionID string, page, pageSize int) ([]models.Transition, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var total int
	if err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transitions WHERE session_id = ?`, sessionID,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count transitions")
	}

	rows, err := j.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT seq, at_us, op, component_id, detail, accepted, advisory, revision
		FROM transitions
		WHERE session_id = ?
		ORDER BY seq
		LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize),
		sessionID,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query transitions")
	}
	defer rows.Close()

	out := make([]models.Transition, 0, pageSize)
	for rows.Next() {
		var (
			t                           models.Transition
			atUs                        int64
			componentID, detail, advice sql.NullString
		)
		if err := rows.Scan(&t.Seq, &atUs, &t.Op, &componentID, &detail, &t.Accepted, &advice, &t.Revision); err != nil {
			return nil, 0, errors.Wrap(err, "scan transition")
		}
		t.SessionID = sessionID
		t.At = time.UnixMicro(atUs)
		t.ComponentID = componentID.String
		t.Detail = detail.String
		t.Advisory = advice.String
		out = append(out, t)
	}
	return out, total, errors.Wrap(rows.Err(), "iterate transitions")
}

// DeleteSession drops every row of a session.
func (j *DuckJournal) DeleteSession(ctx context.Context, sessionID string) error {
	j.mu.Lock()
	delete(j.seq, sessionID)
	j.mu.Unlock()

	if _, err := j.db.ExecContext(ctx, `DELETE FROM transitions WHERE session_id = ?`, sessionID); err != nil {
		return errors.Wrapf(err, "delete transitions of %s", sessionID)
	}
	return nil
}

func (j *DuckJournal) Close() error {
	return j.db.Close()
}

// Nop discards transitions. It is used when the journal is disabled.
type Nop struct{}

func (Nop) Record(_ context.Context, t models.Transition) (models.Transition, error) {
	return t, nil
}

func (Nop) List(context.Context, string, int, int) ([]models.Transition, int, error) {
	return []models.Transition{}, 0, nil
}

func (Nop) DeleteSession(context.Context, string) error { return nil }
func (Nop) Close() error                                { return nil }
