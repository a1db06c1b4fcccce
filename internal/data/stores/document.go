package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcoach/internal/core/changes"
	"github.com/colonyops/taskcoach/internal/core/model"
	"github.com/colonyops/taskcoach/internal/core/snapshot"
	"github.com/colonyops/taskcoach/internal/data/db"
)

// SaveStats reports what a save wrote.
type SaveStats struct {
	Written int
	Deleted int
}

// DocumentStore persists a document in SQLite, one row per object. Saves are
// incremental: only objects the change monitor reports as new or changed are
// written, and tombstoned objects are deleted.
type DocumentStore struct {
	db  *db.DB
	log zerolog.Logger
}

// NewDocumentStore creates a new SQLite-backed document store.
func NewDocumentStore(db *db.DB, log zerolog.Logger) *DocumentStore {
	return &DocumentStore{db: db, log: log}
}

// ErrCorruptRecord reports a stored row whose payload cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

// Document reads every stored object. Rows that cannot be decoded are left
// out of the document and reported with ErrCorruptRecord.
func (s *DocumentStore) Document(ctx context.Context) (snapshot.Document, error) {
	doc := snapshot.Document{Version: snapshot.FormatVersion}
	q := s.db.Queries()

	var bad []error
	if err := loadKind(ctx, q, model.TypeCategory, &doc.Categories, &bad); err != nil {
		return doc, err
	}
	if err := loadKind(ctx, q, model.TypeTask, &doc.Tasks, &bad); err != nil {
		return doc, err
	}
	if err := loadKind(ctx, q, model.TypeNote, &doc.Notes, &bad); err != nil {
		return doc, err
	}
	if err := loadKind(ctx, q, model.TypeEffort, &doc.Efforts, &bad); err != nil {
		return doc, err
	}

	return doc, errors.Join(bad...)
}

// Load restores the stored document into reg and lists. Rows and objects that
// cannot be restored are logged and skipped.
func (s *DocumentStore) Load(ctx context.Context, reg *model.Registry, lists snapshot.Lists) error {
	doc, err := s.Document(ctx)
	if errors.Is(err, ErrCorruptRecord) {
		s.log.Warn().Err(err).Msg("skipped corrupt rows")
	} else if err != nil {
		return err
	}

	if err := snapshot.Restore(doc, reg, lists); err != nil {
		s.log.Warn().Err(err).Msg("skipped unrestorable objects")
	}

	s.log.Debug().
		Int("categories", len(doc.Categories)).
		Int("tasks", len(doc.Tasks)).
		Int("notes", len(doc.Notes)).
		Int("efforts", len(doc.Efforts)).
		Msg("document loaded")

	return nil
}

// Save writes the objects of lists that monitor reports as new or changed,
// deletes the objects it reports as removed, then resets monitor.
func (s *DocumentStore) Save(ctx context.Context, lists snapshot.Lists, monitor *changes.Monitor) (SaveStats, error) {
	var stats SaveStats

	err := retryBusy(ctx, s.log, func() error {
		stats = SaveStats{}
		return s.db.WithTx(ctx, func(q *db.Queries) error {
			return writeDirty(ctx, q, lists, monitor, &stats)
		})
	})
	if err != nil {
		return SaveStats{}, err
	}

	monitor.ResetAllChanges()

	s.log.Debug().Int("written", stats.Written).Int("deleted", stats.Deleted).Msg("document saved")
	return stats, nil
}

func writeDirty(ctx context.Context, q *db.Queries, lists snapshot.Lists, monitor *changes.Monitor, stats *SaveStats) error {
	for _, obj := range lists.Objects() {
		if !dirty(monitor, obj) {
			continue
		}
		if err := upsert(ctx, q, obj); err != nil {
			return err
		}
		stats.Written++
	}

	for _, ts := range monitor.Tombstones() {
		if err := q.DeleteObject(ctx, db.DeleteObjectParams{Kind: string(ts.Type), ID: string(ts.ID)}); err != nil {
			return fmt.Errorf("failed to delete %s %s: %w", ts.Type, ts.ID, err)
		}
		stats.Deleted++
	}

	return nil
}

func dirty(m *changes.Monitor, obj model.Object) bool {
	if m.IsNew(obj.ID()) {
		return true
	}
	set, ok := m.Changes(obj.ID())
	return ok && len(set) > 0
}

func upsert(ctx context.Context, q *db.Queries, obj model.Object) error {
	var (
		rec      any
		modified int64
	)

	switch o := obj.(type) {
	case *model.Category:
		r := snapshot.NewCategoryRecord(o)
		rec, modified = r, r.Modified.UnixNano()
	case *model.Task:
		r := snapshot.NewTaskRecord(o)
		rec, modified = r, r.Modified.UnixNano()
	case *model.Note:
		r := snapshot.NewNoteRecord(o)
		rec, modified = r, r.Modified.UnixNano()
	case *model.Effort:
		r := snapshot.NewEffortRecord(o)
		rec, modified = r, r.Modified.UnixNano()
	default:
		return fmt.Errorf("unsupported object type %T", obj)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", obj.Type(), obj.ID(), err)
	}

	err = q.UpsertObject(ctx, db.UpsertObjectParams{
		Kind:       string(obj.Type()),
		ID:         string(obj.ID()),
		Payload:    payload,
		ModifiedAt: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", obj.Type(), obj.ID(), err)
	}

	return nil
}

func loadKind[R any](ctx context.Context, q *db.Queries, kind model.Type, dest *[]R, bad *[]error) error {
	rows, err := q.ListObjects(ctx, string(kind))
	if err != nil {
		return fmt.Errorf("failed to list %s objects: %w", kind, err)
	}

	for _, row := range rows {
		var r R
		if err := json.Unmarshal(row.Payload, &r); err != nil {
			*bad = append(*bad, fmt.Errorf("%s %s: %w: %w", kind, row.ID, ErrCorruptRecord, err))
			continue
		}
		*dest = append(*dest, r)
	}

	return nil
}
