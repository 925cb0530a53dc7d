package repository

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	doc Document
	seq uint64
}

// MemoryDocumentStore is an in-process DocumentStore used in development mode and tests.
// Every operation, including whole transactions, runs under one lock.
type MemoryDocumentStore struct {
	mu          sync.Mutex
	collections map[string]map[string]memoryEntry
	seq         uint64
}

// NewMemoryDocumentStore returns an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{collections: map[string]map[string]memoryEntry{}}
}

func (s *MemoryDocumentStore) Get(_ context.Context, collection, id string) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(collection, id)
}

func (s *MemoryDocumentStore) getLocked(collection, id string) (Document, bool, error) {
	entry, ok := s.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	doc, err := cloneDocument(entry.doc)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *MemoryDocumentStore) Set(_ context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(collection, id, doc)
}

func (s *MemoryDocumentStore) setLocked(collection, id string, doc Document) error {
	cloned, err := cloneDocument(doc)
	if err != nil {
		return err
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = map[string]memoryEntry{}
		s.collections[collection] = docs
	}
	seq := docs[id].seq
	if seq == 0 {
		s.seq++
		seq = s.seq
	}
	docs[id] = memoryEntry{doc: cloned, seq: seq}
	return nil
}

func (s *MemoryDocumentStore) Update(_ context.Context, collection, id string, patch Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok, err := s.getLocked(collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDocumentNotFound)
	}
	for key, value := range patch {
		doc[key] = value
	}
	return s.setLocked(collection, id, doc)
}

func (s *MemoryDocumentStore) AddAutoID(_ context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if err := s.setLocked(collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryDocumentStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(collection, func(string, Document) bool { return true })
}

func (s *MemoryDocumentStore) QueryEquals(_ context.Context, collection, field string, value any) ([]Document, error) {
	want, err := normalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", collection, field, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(collection, func(id string, doc Document) bool {
		if field == DocumentIDField {
			return reflect.DeepEqual(any(id), want)
		}
		got, ok := doc[field]
		return ok && reflect.DeepEqual(got, want)
	})
}

func (s *MemoryDocumentStore) QueryIn(_ context.Context, collection, field string, values []string) ([]Document, error) {
	if err := checkQueryIn(values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []Document{}, nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(collection, func(id string, doc Document) bool {
		key := id
		if field != DocumentIDField {
			str, ok := doc[field].(string)
			if !ok {
				return false
			}
			key = str
		}
		_, ok := set[key]
		return ok
	})
}

// filterLocked returns matching documents in insertion order.
func (s *MemoryDocumentStore) filterLocked(collection string, match func(id string, doc Document) bool) ([]Document, error) {
	type hit struct {
		doc Document
		seq uint64
	}
	hits := []hit{}
	for id, entry := range s.collections[collection] {
		if !match(id, entry.doc) {
			continue
		}
		doc, err := cloneDocument(entry.doc)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit{doc: doc, seq: entry.seq})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	docs := make([]Document, len(hits))
	for i, h := range hits {
		docs[i] = h.doc
	}
	return docs, nil
}

func (s *MemoryDocumentStore) ArrayUnion(_ context.Context, collection, id, field string, value any) error {
	want, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("array union %s.%s: %w", collection, field, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok, err := s.getLocked(collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDocumentNotFound)
	}
	items, _ := doc[field].([]any)
	for _, item := range items {
		if reflect.DeepEqual(item, want) {
			return nil
		}
	}
	doc[field] = append(items, want)
	return s.setLocked(collection, id, doc)
}

// RunTransaction holds the store lock for the whole of fn, so transactions never
// conflict. Writes are staged and applied only when fn succeeds.
func (s *MemoryDocumentStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: map[string]map[string]Document{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for collection, docs := range tx.staged {
		for id, doc := range docs {
			if err := s.setLocked(collection, id, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *MemoryDocumentStore) Ping(context.Context) error {
	return nil
}

type memoryTx struct {
	store  *MemoryDocumentStore
	staged map[string]map[string]Document
}

func (t *memoryTx) Get(_ context.Context, collection, id string) (Document, bool, error) {
	if doc, ok := t.staged[collection][id]; ok {
		cloned, err := cloneDocument(doc)
		return cloned, err == nil, err
	}
	return t.store.getLocked(collection, id)
}

func (t *memoryTx) Set(_ context.Context, collection, id string, doc Document) error {
	cloned, err := cloneDocument(doc)
	if err != nil {
		return err
	}
	if t.staged[collection] == nil {
		t.staged[collection] = map[string]Document{}
	}
	t.staged[collection][id] = cloned
	return nil
}

func cloneDocument(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	var out Document
	if err := Decode(doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}
