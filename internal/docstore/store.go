package docstore

import (
	"fmt"

	"github.com/yndnr/docmesh-go/internal/core/crdt"
	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/pkg/cmap"
)

// Store holds one replicated document per room.
type Store struct {
	docs    *cmap.Map[string, crdt.Document]
	factory crdt.Factory
	origin  string
	log     logger.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a document store. origin identifies this instance and is
// passed to the document factory for write attribution.
func New(factory crdt.Factory, origin string, opts ...Option) *Store {
	s := &Store{
		docs:    cmap.New[string, crdt.Document](),
		factory: factory,
		origin:  origin,
		log:     logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetOrCreate returns the room's document, creating an empty one on
// first access.
func (s *Store) GetOrCreate(roomID string) crdt.Document {
	return s.docs.Upsert(roomID, nil, func(existing crdt.Document, exists bool) crdt.Document {
		if exists {
			return existing
		}
		s.log.Debug("document created", "room", roomID)
		return s.factory(s.origin)
	})
}

// ApplyMerge merges an opaque update delta into the room's document.
// Empty input is logged and dropped without surfacing an error; the
// caller's connection and room stay usable. Applying never creates a
// document: a document exists only while its room does, and an update
// for a dead room must not resurrect one.
func (s *Store) ApplyMerge(roomID string, update []byte) error {
	if len(update) == 0 {
		s.log.Warn("empty merge update dropped", "room", roomID)
		return nil
	}

	doc, ok := s.docs.Get(roomID)
	if !ok {
		return domain.ErrDocumentNotFound.WithDetails(roomID)
	}
	if err := doc.Merge(update); err != nil {
		return domain.ErrInvalidUpdate.Wrap(fmt.Errorf("room %s: %w", roomID, err))
	}
	return nil
}

// ApplyPatch atomically upserts the given fields, last-writer-wins per
// field. Partial application is never observable. Like ApplyMerge, it
// never creates a document.
func (s *Store) ApplyPatch(roomID string, fields map[string]any) error {
	if len(fields) == 0 {
		s.log.Warn("empty patch update dropped", "room", roomID)
		return nil
	}

	doc, ok := s.docs.Get(roomID)
	if !ok {
		return domain.ErrDocumentNotFound.WithDetails(roomID)
	}
	if err := doc.Patch(fields); err != nil {
		return domain.ErrInvalidUpdate.Wrap(fmt.Errorf("room %s: %w", roomID, err))
	}
	return nil
}

// EncodeFull produces an opaque full-state encoding sufficient for a
// fresh replica to reconstruct equivalent state by merging it in.
func (s *Store) EncodeFull(roomID string) ([]byte, error) {
	doc := s.GetOrCreate(roomID)
	state, err := doc.EncodeState()
	if err != nil {
		return nil, domain.ErrInvalidUpdate.Wrap(fmt.Errorf("encode room %s: %w", roomID, err))
	}
	return state, nil
}

// AsPlainObject returns a diagnostic snapshot of the room's document,
// or nil if no document exists.
func (s *Store) AsPlainObject(roomID string) map[string]any {
	doc, ok := s.docs.Get(roomID)
	if !ok {
		return nil
	}
	return doc.Snapshot()
}

// Has reports whether a document exists for the room.
func (s *Store) Has(roomID string) bool {
	return s.docs.Has(roomID)
}

// Empty reports whether the room's document holds no state. A missing
// document counts as empty.
func (s *Store) Empty(roomID string) bool {
	doc, ok := s.docs.Get(roomID)
	if !ok {
		return true
	}
	return doc.Empty()
}

// Delete releases all resources held for the room's document.
func (s *Store) Delete(roomID string) {
	if _, ok := s.docs.Pop(roomID); ok {
		s.log.Debug("document deleted", "room", roomID)
	}
}

// Count returns the number of live documents.
func (s *Store) Count() int {
	return s.docs.Count()
}
