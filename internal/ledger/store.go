package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

const table = "dispositions"

var columns = []string{
	"stage", "file_key", "file_name", "outcome", "failure_kind",
	"reason", "content_hash", "output_path", "run_id", "updated_at",
}

// Disposition is where one file ended up in one stage.
type Disposition struct {
	Stage       constants.Stage
	FileKey     string
	FileName    string
	Outcome     constants.Outcome
	Kind        constants.FailureKind
	Reason      string
	ContentHash string
	OutputPath  string
	RunID       string
	UpdatedAt   time.Time
}

// Recorder is what the stages depend on.
type Recorder interface {
	Record(ctx context.Context, d Disposition) error
}

// Lookup answers which source a recorded output belongs to.
type Lookup interface {
	Get(ctx context.Context, stage constants.Stage, key string) (Disposition, error)
	OwnerOf(ctx context.Context, stage constants.Stage, outputPath string) (Disposition, error)
}

// Nop discards dispositions; used when the ledger is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Disposition) error { return nil }

// Store persists dispositions, one row per (stage, file key); later records replace earlier ones.
type Store struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

func (s *Store) Record(ctx context.Context, d Disposition) error {
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = s.now().UTC()
	}
	if d.RunID == "" {
		d.RunID = common.RunIDFromContext(ctx)
	}
	q, args, err := entsql.Dialect(s.db.dialect).
		Insert(table).
		Columns(columns...).
		Values(
			string(d.Stage), d.FileKey, d.FileName, string(d.Outcome), string(d.Kind),
			d.Reason, d.ContentHash, d.OutputPath, d.RunID, d.UpdatedAt.UnixMilli(),
		).
		OnConflict(
			entsql.ConflictColumns("stage", "file_key"),
			entsql.ResolveWithNewValues(),
		).
		QueryErr()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.db.ExecContext(ctx, q, args...); err != nil {
		s.logger.Error("ledger.record.failed", "stage", d.Stage, "file", d.FileName, "error", err)
		return fmt.Errorf("record disposition: %w", err)
	}
	return nil
}

// Get returns the disposition for (stage, key) or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, stage constants.Stage, key string) (Disposition, error) {
	b := entsql.Dialect(s.db.dialect)
	q, args := b.Select(columns...).
		From(b.Table(table)).
		Where(entsql.And(entsql.EQ("stage", string(stage)), entsql.EQ("file_key", key))).
		Query()

	d, err := scanDisposition(s.db.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Disposition{}, fmt.Errorf("disposition %s/%s: %w", stage, key, common.ErrNotFound)
	}
	if err != nil {
		return Disposition{}, fmt.Errorf("get disposition: %w", err)
	}
	return d, nil
}

// OwnerOf returns the latest successful disposition that wrote outputPath, or common.ErrNotFound.
func (s *Store) OwnerOf(ctx context.Context, stage constants.Stage, outputPath string) (Disposition, error) {
	b := entsql.Dialect(s.db.dialect)
	q, args := b.Select(columns...).
		From(b.Table(table)).
		Where(entsql.And(
			entsql.EQ("stage", string(stage)),
			entsql.EQ("output_path", outputPath),
			entsql.In("outcome", string(constants.OutcomeExtracted), string(constants.OutcomeSkipped)),
		)).
		OrderBy(entsql.Desc("updated_at")).
		Limit(1).
		Query()

	d, err := scanDisposition(s.db.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Disposition{}, fmt.Errorf("owner of %s: %w", outputPath, common.ErrNotFound)
	}
	if err != nil {
		return Disposition{}, fmt.Errorf("get output owner: %w", err)
	}
	return d, nil
}

// List returns every disposition of a stage ordered by file key.
func (s *Store) List(ctx context.Context, stage constants.Stage) ([]Disposition, error) {
	b := entsql.Dialect(s.db.dialect)
	q, args := b.Select(columns...).
		From(b.Table(table)).
		Where(entsql.EQ("stage", string(stage))).
		OrderBy("file_key").
		Query()

	rows, err := s.db.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list dispositions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Disposition
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan disposition: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDisposition(r scanner) (Disposition, error) {
	var (
		d                    Disposition
		stage, outcome, kind string
		updatedAt            int64
	)
	if err := r.Scan(&stage, &d.FileKey, &d.FileName, &outcome, &kind,
		&d.Reason, &d.ContentHash, &d.OutputPath, &d.RunID, &updatedAt); err != nil {
		return Disposition{}, err
	}
	d.Stage = constants.Stage(stage)
	d.Outcome = constants.Outcome(outcome)
	d.Kind = constants.FailureKind(kind)
	d.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return d, nil
}
