package memory

import (
	"context"
	"sort"
	"time"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/repository/specification"

	"github.com/google/uuid"
)

var documentColumns = columns[*entity.Document]{
	"id":           func(d *entity.Document) interface{} { return d.Id },
	"user_id":      func(d *entity.Document) interface{} { return d.UserId },
	"status":       func(d *entity.Document) interface{} { return string(d.Status) },
	"content_hash": func(d *entity.Document) interface{} { return d.ContentHash },
	"title":        func(d *entity.Document) interface{} { return d.Title },
	"filename":     func(d *entity.Document) interface{} { return d.Filename },
	"uploaded_at":  func(d *entity.Document) interface{} { return d.UploadedAt },
}

var chunkColumns = columns[*entity.DocumentChunk]{
	"id":          func(c *entity.DocumentChunk) interface{} { return c.Id },
	"document_id": func(c *entity.DocumentChunk) interface{} { return c.DocumentId },
	"chunk_index": func(c *entity.DocumentChunk) interface{} { return c.ChunkIndex },
	"chunk_type":  func(c *entity.DocumentChunk) interface{} { return c.ChunkType },
	"created_at":  func(c *entity.DocumentChunk) interface{} { return c.CreatedAt },
}

var imageColumns = columns[*entity.DocumentImage]{
	"id":          func(i *entity.DocumentImage) interface{} { return i.Id },
	"document_id": func(i *entity.DocumentImage) interface{} { return i.DocumentId },
	"page_number": func(i *entity.DocumentImage) interface{} { return i.PageNumber },
	"image_type":  func(i *entity.DocumentImage) interface{} { return i.ImageType },
}

var sessionColumns = columns[*entity.ChatSession]{
	"id":               func(s *entity.ChatSession) interface{} { return s.Id },
	"user_id":          func(s *entity.ChatSession) interface{} { return s.UserId },
	"title":            func(s *entity.ChatSession) interface{} { return s.Title },
	"last_activity_at": func(s *entity.ChatSession) interface{} { return s.LastActivityAt },
	"created_at":       func(s *entity.ChatSession) interface{} { return s.CreatedAt },
}

var messageColumns = columns[*entity.ChatMessage]{
	"id":              func(m *entity.ChatMessage) interface{} { return m.Id },
	"chat_session_id": func(m *entity.ChatMessage) interface{} { return m.ChatSessionId },
	"sequence":        func(m *entity.ChatMessage) interface{} { return m.Sequence },
	"role":            func(m *entity.ChatMessage) interface{} { return m.Role },
	"created_at":      func(m *entity.ChatMessage) interface{} { return m.CreatedAt },
}

type documentRepository struct {
	store *Store
}

func (r *documentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, d := range r.store.data.documents {
		if d.UserId == document.UserId && d.ContentHash == document.ContentHash {
			return ErrDuplicateKey
		}
	}
	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.UploadedAt.IsZero() {
		document.UploadedAt = time.Now()
	}
	if document.Status == "" {
		document.Status = entity.DocumentUploaded
	}
	r.store.data.documents[document.Id] = *document
	return nil
}

func (r *documentRepository) Update(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data.documents[document.Id] = *document
	return nil
}

// Delete cascades to chunks and images like the foreign keys do.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.data.documents, id)
	for cid, c := range r.store.data.chunks {
		if c.DocumentId == id {
			delete(r.store.data.chunks, cid)
		}
	}
	for iid, img := range r.store.data.images {
		if img.DocumentId == id {
			delete(r.store.data.images, iid)
		}
	}
	return nil
}

func (r *documentRepository) rows() []*entity.Document {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.Document, 0, len(r.store.data.documents))
	for _, d := range r.store.data.documents {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}

func (r *documentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	found, err := selectRows(r.rows(), documentColumns, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *documentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return selectRows(r.rows(), documentColumns, specs...)
}

func (r *documentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := selectRows(r.rows(), documentColumns, specs...)
	return int64(len(found)), err
}

type chunkRepository struct {
	store *Store
}

func (r *chunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		r.store.data.chunks[c.Id] = *c
	}
	return nil
}

func (r *chunkRepository) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, c := range r.store.data.chunks {
		if c.DocumentId == documentId {
			delete(r.store.data.chunks, id)
		}
	}
	return nil
}

func (r *chunkRepository) rows() []*entity.DocumentChunk {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.DocumentChunk, 0, len(r.store.data.chunks))
	for _, c := range r.store.data.chunks {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentId != out[j].DocumentId {
			return out[i].DocumentId.String() < out[j].DocumentId.String()
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out
}

func (r *chunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return selectRows(r.rows(), chunkColumns, specs...)
}

func (r *chunkRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := selectRows(r.rows(), chunkColumns, specs...)
	return int64(len(found)), err
}

func (r *chunkRepository) FindCompletedByUser(ctx context.Context, userId uuid.UUID) ([]*entity.CorpusChunk, error) {
	titles := map[uuid.UUID]string{}
	r.store.mu.Lock()
	for _, d := range r.store.data.documents {
		if d.UserId == userId && d.Status == entity.DocumentCompleted {
			titles[d.Id] = d.Title
		}
	}
	r.store.mu.Unlock()

	var out []*entity.CorpusChunk
	for _, c := range r.rows() {
		title, ok := titles[c.DocumentId]
		if !ok {
			continue
		}
		out = append(out, &entity.CorpusChunk{DocumentChunk: *c, DocumentTitle: title})
	}
	return out, nil
}

type imageRepository struct {
	store *Store
}

func (r *imageRepository) CreateBulk(ctx context.Context, images []*entity.DocumentImage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for _, img := range images {
		if img.Id == uuid.Nil {
			img.Id = uuid.New()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
		r.store.data.images[img.Id] = *img
	}
	return nil
}

func (r *imageRepository) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, img := range r.store.data.images {
		if img.DocumentId == documentId {
			delete(r.store.data.images, id)
		}
	}
	return nil
}

func (r *imageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentImage, error) {
	r.store.mu.Lock()
	rows := make([]*entity.DocumentImage, 0, len(r.store.data.images))
	for _, img := range r.store.data.images {
		img := img
		rows = append(rows, &img)
	}
	r.store.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return selectRows(rows, imageColumns, specs...)
}

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastActivityAt.IsZero() {
		session.LastActivityAt = now
	}
	r.store.data.sessions[session.Id] = *session
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	session.UpdatedAt = &now
	r.store.data.sessions[session.Id] = *session
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.data.sessions[id]
	if !ok || s.IsDeleted {
		return nil
	}
	now := time.Now()
	s.DeletedAt = &now
	s.IsDeleted = true
	r.store.data.sessions[id] = s
	return nil
}

func (r *sessionRepository) rows() []*entity.ChatSession {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.ChatSession, 0, len(r.store.data.sessions))
	for _, s := range r.store.data.sessions {
		if s.IsDeleted {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	found, err := selectRows(r.rows(), sessionColumns, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return selectRows(r.rows(), sessionColumns, specs...)
}

func (r *sessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := selectRows(r.rows(), sessionColumns, specs...)
	return int64(len(found)), err
}

type messageRepository struct {
	store *Store
}

func (r *messageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.data.messages {
		if m.ChatSessionId == message.ChatSessionId && m.Sequence == message.Sequence {
			return ErrDuplicateKey
		}
	}
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.store.data.messages[message.Id] = *message
	return nil
}

func (r *messageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for id, m := range r.store.data.messages {
		if m.ChatSessionId == sessionId && !m.IsDeleted {
			m.DeletedAt = &now
			m.IsDeleted = true
			r.store.data.messages[id] = m
		}
	}
	return nil
}

func (r *messageRepository) rows() []*entity.ChatMessage {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.ChatMessage, 0, len(r.store.data.messages))
	for _, m := range r.store.data.messages {
		if m.IsDeleted {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func (r *messageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return selectRows(r.rows(), messageColumns, specs...)
}

func (r *messageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := selectRows(r.rows(), messageColumns, specs...)
	return int64(len(found)), err
}
