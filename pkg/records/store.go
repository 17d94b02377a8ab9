// Package records provides the file-backed store of tagged text records.
package records

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dukex/textflow/pkg/codec"
	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/dukex/textflow/pkg/events"
	"github.com/dukex/textflow/pkg/models"
	"github.com/dukex/textflow/pkg/persistence/file"
	"github.com/dukex/textflow/pkg/tags"
	"github.com/google/uuid"
)

const filePerm = 0o644

// recordNamespace derives stable record ids from file names so ids survive reloads.
var recordNamespace = uuid.MustParse("5b0b7a4e-3f0c-4c55-9d7e-7c1f6f2d9a10")

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPublisher sets the publisher notified after every mutation.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(s *Store) {
		s.publisher = publisher
	}
}

// Store owns the in-memory record list and keeps one file per record in the
// directory chosen by its Resolver. The in-memory list is authoritative
// between reloads.
type Store struct {
	logger    *slog.Logger
	resolver  Resolver
	now       func() time.Time
	publisher eventbus.EventPublisher

	mu      sync.RWMutex
	records []*models.Record
	index   *tags.Index
}

// NewStore creates an empty store. Call Reload to load existing records.
func NewStore(logger *slog.Logger, resolver Resolver, opts ...Option) *Store {
	s := &Store{
		logger:    logger.With("module", "records"),
		resolver:  resolver,
		now:       time.Now,
		publisher: eventbus.NopPublisher{},
		index:     tags.Recompute(nil),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RecordID returns the id of the record stored in fileName.
func RecordID(fileName string) string {
	return uuid.NewSHA1(recordNamespace, []byte(fileName)).String()
}

// Location reports which directory is active.
func (s *Store) Location() Location {
	_, location, err := s.resolver.Resolve()
	if err != nil {
		return LocationLocal
	}

	return location
}

// Dir returns the directory records are currently read from and written to.
func (s *Store) Dir() (string, error) {
	dir, _, err := s.resolver.Resolve()

	return dir, err
}

// Add saves text as a new record at the head of the list. Empty text is a
// no-op returning nil. A record whose text is identical is removed first.
// When the file write fails the record is still held in memory and returned
// together with the error.
func (s *Store) Add(ctx context.Context, text string, recordTags []string) (*models.Record, error) {
	if text == "" {
		return nil, nil
	}

	dir, _, err := s.resolver.Resolve()
	if err != nil {
		return nil, newStorageError("add", "", err)
	}

	s.mu.Lock()

	var replaced []string

	for _, existing := range s.records {
		if existing.Text == text {
			replaced = append(replaced, existing.ID)
			s.removeFile(dir, existing)
		}
	}

	s.records = slices.DeleteFunc(s.records, func(r *models.Record) bool {
		return r.Text == text
	})

	createdAt := s.now().Truncate(time.Second)
	fileName := s.availableFileName(dir, createdAt)

	record := &models.Record{
		ID:          RecordID(fileName),
		FileName:    fileName,
		Text:        text,
		Description: codec.DefaultDescription(text),
		Tags:        normalizeTags(recordTags),
		CreatedAt:   createdAt,
	}

	s.records = slices.Insert(s.records, 0, record)
	s.index = tags.Recompute(s.records)

	writeErr := s.writeRecord(dir, record)
	result := record.Clone()

	s.mu.Unlock()

	if writeErr != nil {
		s.logger.ErrorContext(ctx, "Failed to write record", "record_id", record.ID, "file", fileName, "error", writeErr)

		return result, newStorageError("add", record.ID, writeErr)
	}

	s.logger.InfoContext(ctx, "Record added", "record_id", record.ID, "file", fileName, "tags", len(record.Tags))

	event := events.RecordAdded{
		BaseEvent: events.NewBaseEvent(events.RecordAddedEvent),
		RecordID:  record.ID,
		FileName:  fileName,
		Tags:      result.Tags,
	}
	if len(replaced) > 0 {
		event.ReplacedID = replaced[0]
	}

	s.publish(ctx, record.ID, event)

	return result, nil
}

// Delete removes the record with id. Failure to remove the backing file is
// logged and the record is still dropped from memory.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	_, ok := s.find(id)
	s.mu.RUnlock()

	if !ok {
		return newStorageError("delete", id, ErrRecordNotFound)
	}

	return s.DeleteBatch(ctx, []string{id})
}

// DeleteBatch removes every record whose id is listed. Unknown ids are ignored.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	dir, _, resolveErr := s.resolver.Resolve()

	s.mu.Lock()

	deleted := make([]string, 0, len(ids))

	s.records = slices.DeleteFunc(s.records, func(r *models.Record) bool {
		if _, ok := wanted[r.ID]; !ok {
			return false
		}

		if resolveErr == nil {
			s.removeFile(dir, r)
		}

		deleted = append(deleted, r.ID)

		return true
	})
	s.index = tags.Recompute(s.records)

	s.mu.Unlock()

	if resolveErr != nil {
		s.logger.WarnContext(ctx, "Record files left on disk", "error", resolveErr)
	}

	if len(deleted) == 0 {
		return nil
	}

	s.logger.InfoContext(ctx, "Records deleted", "count", len(deleted))

	s.publish(ctx, deleted[0], events.RecordsDeleted{
		BaseEvent: events.NewBaseEvent(events.RecordsDeletedEvent),
		RecordIDs: deleted,
	})

	return nil
}

// UpdateTags replaces the tags of a record and rewrites its file in place.
func (s *Store) UpdateTags(ctx context.Context, id string, recordTags []string) (*models.Record, error) {
	return s.mutateTags(ctx, "update_tags", id, func([]string) []string {
		return recordTags
	})
}

// AddTag adds tag to a record. The file is rewritten even if the tag was present.
func (s *Store) AddTag(ctx context.Context, id, tag string) (*models.Record, error) {
	return s.mutateTags(ctx, "add_tag", id, func(current []string) []string {
		return append(slices.Clone(current), tag)
	})
}

// RemoveTag removes tag from a record. The file is rewritten even if the tag was absent.
func (s *Store) RemoveTag(ctx context.Context, id, tag string) (*models.Record, error) {
	return s.mutateTags(ctx, "remove_tag", id, func(current []string) []string {
		return slices.DeleteFunc(slices.Clone(current), func(t string) bool {
			return t == tag
		})
	})
}

func (s *Store) mutateTags(ctx context.Context, op, id string, update func([]string) []string) (*models.Record, error) {
	dir, _, err := s.resolver.Resolve()
	if err != nil {
		return nil, newStorageError(op, id, err)
	}

	s.mu.Lock()

	idx, ok := s.find(id)
	if !ok {
		s.mu.Unlock()

		return nil, newStorageError(op, id, ErrRecordNotFound)
	}

	record := s.records[idx].Clone()
	record.Tags = normalizeTags(update(record.Tags))

	s.records[idx] = record
	s.index = tags.Recompute(s.records)

	writeErr := s.writeRecord(dir, record)
	result := record.Clone()

	s.mu.Unlock()

	if writeErr != nil {
		s.logger.ErrorContext(ctx, "Failed to rewrite record", "record_id", id, "error", writeErr)

		return result, newStorageError(op, id, writeErr)
	}

	s.publish(ctx, id, events.RecordUpdated{
		BaseEvent: events.NewBaseEvent(events.RecordUpdatedEvent),
		RecordID:  id,
		Tags:      result.Tags,
	})

	return result, nil
}

// Records returns a snapshot of the records, newest first.
func (s *Store) Records() []*models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]*models.Record, 0, len(s.records))
	for _, record := range s.records {
		snapshot = append(snapshot, record.Clone())
	}

	return snapshot
}

// Get returns the record with id.
func (s *Store) Get(id string) (*models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.find(id)
	if !ok {
		return nil, false
	}

	return s.records[idx].Clone(), true
}

// Tags returns the tag index derived from the current records.
func (s *Store) Tags() *tags.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index
}

// Reload replaces the in-memory list with the records found on disk. Files
// whose names are not record names, and files that cannot be read, are skipped.
func (s *Store) Reload(ctx context.Context) error {
	dir, location, err := s.resolver.Resolve()
	if err != nil {
		return newStorageError("reload", "", err)
	}

	names, err := recordFileNames(dir)
	if err != nil {
		return newStorageError("reload", "", err)
	}

	loaded := make([]*models.Record, 0, len(names))

	for _, name := range names {
		record, ok := s.readRecord(ctx, dir, name)
		if ok {
			loaded = append(loaded, record)
		}
	}

	slices.SortFunc(loaded, func(a, b *models.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		if c := cmp.Compare(fileSequence(b.FileName), fileSequence(a.FileName)); c != 0 {
			return c
		}

		return cmp.Compare(b.FileName, a.FileName)
	})

	s.mu.Lock()
	s.records = loaded
	s.index = tags.Recompute(loaded)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Records loaded", "count", len(loaded), "location", location)

	s.publish(ctx, string(location), events.RecordsReloaded{
		BaseEvent: events.NewBaseEvent(events.RecordsReloadedEvent),
		Count:     len(loaded),
		Location:  string(location),
	})

	return nil
}

// List reloads from disk and returns the records, newest first.
func (s *Store) List(ctx context.Context) ([]*models.Record, error) {
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	return s.Records(), nil
}

// recordFileNames lists the files in dir whose names are record names.
func recordFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, _, ok := codec.ParseFileName(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func (s *Store) readRecord(ctx context.Context, dir, name string) (*models.Record, bool) {
	createdAt, _, ok := codec.ParseFileName(name)
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		s.logger.WarnContext(ctx, "Skipping unreadable record", "file", name, "error", err)

		return nil, false
	}

	decoded := codec.DecodeRecord(string(data))
	if !decoded.CreatedAt.IsZero() {
		createdAt = decoded.CreatedAt
	}

	return &models.Record{
		ID:          RecordID(name),
		FileName:    name,
		Text:        decoded.Body,
		Description: decoded.Description,
		Tags:        decoded.Tags,
		CreatedAt:   createdAt,
	}, true
}

// availableFileName returns the first name for createdAt that is neither held
// in memory nor present on disk. Callers hold s.mu.
func (s *Store) availableFileName(dir string, createdAt time.Time) string {
	for seq := 1; ; seq++ {
		name := codec.FileNameWithSequence(createdAt, seq)

		if slices.ContainsFunc(s.records, func(r *models.Record) bool { return r.FileName == name }) {
			continue
		}

		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			continue
		}

		return name
	}
}

func (s *Store) writeRecord(dir string, record *models.Record) error {
	blob := codec.Encode(record.Text, record.Description, record.Tags, record.CreatedAt)

	return file.WriteFileAtomic(filepath.Join(dir, record.FileName), []byte(blob), filePerm)
}

func (s *Store) removeFile(dir string, record *models.Record) {
	err := os.Remove(filepath.Join(dir, record.FileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Failed to remove record file", "record_id", record.ID, "file", record.FileName, "error", err)
	}
}

// find returns the index of the record with id. Callers hold s.mu.
func (s *Store) find(id string) (int, bool) {
	idx := slices.IndexFunc(s.records, func(r *models.Record) bool {
		return r.ID == id
	})

	return idx, idx >= 0
}

func (s *Store) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func fileSequence(name string) int {
	_, seq, _ := codec.ParseFileName(name)

	return seq
}

// normalizeTags drops empty and repeated tags, keeping first-occurrence order.
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))

	for _, tag := range in {
		if tag == "" || slices.Contains(out, tag) {
			continue
		}

		out = append(out, tag)
	}

	return out
}
