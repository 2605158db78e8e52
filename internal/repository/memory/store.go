// Package memory is an in-process implementation of the unit of work used by
// service tests and the CLI's offline mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/repository/contract"
	"research-rag-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateKey wraps gorm.ErrDuplicatedKey so callers handle unique
// violations the same way for both stores.
var ErrDuplicateKey = fmt.Errorf("memory: %w", gorm.ErrDuplicatedKey)

type tables struct {
	documents map[uuid.UUID]entity.Document
	chunks    map[uuid.UUID]entity.DocumentChunk
	images    map[uuid.UUID]entity.DocumentImage
	sessions  map[uuid.UUID]entity.ChatSession
	messages  map[uuid.UUID]entity.ChatMessage
}

func newTables() *tables {
	return &tables{
		documents: map[uuid.UUID]entity.Document{},
		chunks:    map[uuid.UUID]entity.DocumentChunk{},
		images:    map[uuid.UUID]entity.DocumentImage{},
		sessions:  map[uuid.UUID]entity.ChatSession{},
		messages:  map[uuid.UUID]entity.ChatMessage{},
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		documents: cloneMap(t.documents),
		chunks:    cloneMap(t.chunks),
		images:    cloneMap(t.images),
		sessions:  cloneMap(t.sessions),
		messages:  cloneMap(t.messages),
	}
}

// Store holds every table. Rollback restores the snapshot taken at Begin,
// so concurrent transactions are not isolated from each other.
type Store struct {
	mu   sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

var (
	_ unitofwork.RepositoryFactory = (*Store)(nil)
	_ unitofwork.UnitOfWork        = (*UnitOfWork)(nil)
)

type UnitOfWork struct {
	store    *Store
	snapshot *tables
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	u.snapshot = u.store.data.clone()
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snapshot = nil
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.data = u.snapshot
	u.store.mu.Unlock()
	u.snapshot = nil
	return nil
}

func (u *UnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &documentRepository{store: u.store}
}

func (u *UnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &chunkRepository{store: u.store}
}

func (u *UnitOfWork) DocumentImageRepository() contract.DocumentImageRepository {
	return &imageRepository{store: u.store}
}

func (u *UnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *UnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &messageRepository{store: u.store}
}
