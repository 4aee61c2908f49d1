package snapshot

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/plus3/sparsecs/ecs"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = eris.New("snapshot: not found")

// Info describes a stored snapshot without its document.
type Info struct {
	Name       string
	CreatedAt  time.Time
	Entities   int
	Components int
	Size       int
}

// Store keeps named snapshots in a SQLite database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the database at path and applies pending
// migrations. A nil log discards everything.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	// One connection keeps :memory: databases intact across calls.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("opened snapshot store", zap.String("path", path))
	return &Store{db: db, log: log, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return eris.Wrap(err, "set dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return eris.Wrap(err, "run migrations")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores snap under name, replacing any snapshot with the same name.
func (s *Store) Save(ctx context.Context, name string, snap *ecs.Snapshot) error {
	doc, err := Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, created_at, entities, components, document)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		     created_at = excluded.created_at,
		     entities   = excluded.entities,
		     components = excluded.components,
		     document   = excluded.document`,
		name, s.now().UnixMilli(), len(snap.Entities), len(snap.Components), doc,
	)
	if err != nil {
		return eris.Wrapf(err, "save snapshot %q", name)
	}
	s.log.Info("saved snapshot",
		zap.String("name", name),
		zap.Int("entities", len(snap.Entities)),
		zap.Int("bytes", len(doc)),
	)
	return nil
}

// SaveWorld snapshots w and stores it under name.
func (s *Store) SaveWorld(ctx context.Context, name string, w *ecs.World) error {
	snap, err := w.Snapshot()
	if err != nil {
		return err
	}
	return s.Save(ctx, name, snap)
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (*ecs.Snapshot, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM snapshots WHERE name = ?`, name,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "load %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "load snapshot %q", name)
	}
	return Unmarshal(doc)
}

// List returns every stored snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, created_at, entities, components, length(document)
		 FROM snapshots ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, eris.Wrap(err, "list snapshots")
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info    Info
			created int64
		)
		if err := rows.Scan(&info.Name, &created, &info.Entities, &info.Components, &info.Size); err != nil {
			return nil, eris.Wrap(err, "scan snapshot")
		}
		info.CreatedAt = time.UnixMilli(created)
		infos = append(infos, info)
	}
	return infos, eris.Wrap(rows.Err(), "list snapshots")
}

// Delete removes the snapshot stored under name and reports whether there
// was one.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return false, eris.Wrapf(err, "delete snapshot %q", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrapf(err, "delete snapshot %q", name)
	}
	return n > 0, nil
}
