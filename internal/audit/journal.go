package audit

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/audit/migrations"
	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/oklog/ulid/v2"
)

// DefaultKeep bounds the journal size.
const DefaultKeep = 1000

// Journal appends events and trims old ones. Recording is best effort:
// failures are logged and never returned.
type Journal struct {
	db   *sql.DB
	log  logging.Logger
	keep int
	now  func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens (creating if needed) the journal database at path.
func Open(ctx context.Context, path string, log logging.Logger) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := dbx.OpenSQLite(ctx, dsn, migrations.Migrations, ".")
	if err != nil {
		return nil, err
	}
	return New(db, log), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, log logging.Logger) *Journal {
	return &Journal{
		db:      db,
		log:     log.With("module", "audit"),
		keep:    DefaultKeep,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (j *Journal) newID(t time.Time) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), j.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Record stores one event.
func (j *Journal) Record(ctx context.Context, typ Type, address, detail string) {
	now := j.now().UTC()

	id, err := j.newID(now)
	if err != nil {
		j.log.Warn(ctx, "journal id", "type", typ, "error", err)
		return
	}

	e := Event{ID: id, Type: typ, Address: address, Detail: detail, CreatedAt: now}

	err = dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Insert(ctx, e); err != nil {
			return err
		}
		return repo.Prune(ctx, j.keep)
	})
	if err != nil {
		j.log.Warn(ctx, "journal write failed", "type", typ, "error", err)
		return
	}
	j.log.Debug(ctx, "journal event", "type", typ, "id", id)
}

// List returns up to limit events, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	return NewSQLiteRepository(j.db).List(ctx, limit)
}

func (j *Journal) Close() error {
	return j.db.Close()
}
