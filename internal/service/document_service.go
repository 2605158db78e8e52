package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/entity"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/repository/specification"
	"research-rag-be/internal/repository/unitofwork"
	"research-rag-be/pkg/chunker"
	"research-rag-be/pkg/events"
	"research-rag-be/pkg/pdf"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	documentModule        = "DOCUMENT_SERVICE"
	DefaultMaxUploadBytes = 50 << 20
)

// ErrNoChunks marks a document that produced no usable chunk.
var ErrNoChunks = errors.New("document produced no chunks")

type PDFExtractor interface {
	Extract(ctx context.Context, path string) (*pdf.Content, error)
}

type DocumentChunker interface {
	Chunk(ctx context.Context, content *pdf.Content) ([]chunker.Chunk, chunker.Stats, error)
}

type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []chunker.Chunk) [][]float32
}

type DocumentServiceConfig struct {
	UploadDir      string
	ImageDir       string
	MaxUploadBytes int64
}

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, filename string, r io.Reader) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) ([]dto.DocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentDetailResponse, error)
	Chunks(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ListChunksRequest) ([]dto.ChunkResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Clear(ctx context.Context, userId uuid.UUID) (*dto.ClearDocumentsResponse, error)
}

type documentService struct {
	cfg              DocumentServiceConfig
	uowFactory       unitofwork.RepositoryFactory
	extractor        PDFExtractor
	chunker          DocumentChunker
	embedder         ChunkEmbedder
	publisherService IPublisherService
	tracer           trace.Tracer
	logger           logger.ILogger
}

func NewDocumentService(
	cfg DocumentServiceConfig,
	uowFactory unitofwork.RepositoryFactory,
	extractor PDFExtractor,
	docChunker DocumentChunker,
	embedder ChunkEmbedder,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &documentService{
		cfg:              cfg,
		uowFactory:       uowFactory,
		extractor:        extractor,
		chunker:          docChunker,
		embedder:         embedder,
		publisherService: publisherService,
		tracer:           otel.Tracer("research-rag/document"),
		logger:           log,
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with "_".
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "document.pdf"
	}
	return name
}

// TitleFromFilename turns "deep_learning-survey.pdf" into "deep learning survey".
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled document"
	}
	return base
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, filename string, r io.Reader) (*dto.UploadDocumentResponse, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, serverutils.BadRequest("only PDF files are supported")
	}
	safeName := SanitizeFilename(filename)

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, serverutils.Internal(err)
	}
	path := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), safeName))

	size, hash, err := s.store(path, r)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByContentHash{Hash: hash},
	)
	if err != nil {
		os.Remove(path)
		return nil, serverutils.Internal(err)
	}
	if existing != nil {
		os.Remove(path)
		return s.duplicate(ctx, uow, existing)
	}

	title := TitleFromFilename(safeName)
	doc := &entity.Document{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       title,
		Filename:    safeName,
		ContentHash: hash,
		FileSize:    size,
		Status:      entity.DocumentUploaded,
		UploadedAt:  time.Now(),
	}
	doc.SetMeta("original_title", title)
	doc.SetMeta("file_path", path)

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		os.Remove(path)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent upload of the same file won the insert
			return s.findDuplicate(ctx, uow, userId, hash, err)
		}
		return nil, serverutils.Internal(err)
	}

	chunkCount, err := s.process(ctx, doc, path)
	if err != nil {
		return nil, err
	}
	return uploadResponse(doc, chunkCount), nil
}

func (s *documentService) findDuplicate(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, hash string, cause error) (*dto.UploadDocumentResponse, error) {
	existing, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByContentHash{Hash: hash},
	)
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	if existing == nil {
		return nil, serverutils.Internal(cause)
	}
	return s.duplicate(ctx, uow, existing)
}

func (s *documentService) duplicate(ctx context.Context, uow unitofwork.UnitOfWork, existing *entity.Document) (*dto.UploadDocumentResponse, error) {
	count, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: existing.Id})
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	s.logger.Info(documentModule, "Duplicate upload, returning existing document", map[string]interface{}{
		"document_id": existing.Id.String(),
		"user_id":     existing.UserId.String(),
	})
	res := uploadResponse(existing, int(count))
	res.Duplicate = true
	return res, nil
}

// store copies the upload to path while hashing it, enforcing the size cap
// on the bytes actually read.
func (s *documentService) store(path string, r io.Reader) (int64, string, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, "", serverutils.Internal(err)
	}
	defer f.Close()

	h := sha256.New()
	limit := s.cfg.MaxUploadBytes
	n, err := io.Copy(io.MultiWriter(f, h), io.LimitReader(r, limit+1))
	if err != nil {
		return 0, "", serverutils.Internal(err)
	}
	if n > limit {
		return 0, "", serverutils.BadRequest(fmt.Sprintf("file exceeds the %dMB limit", limit>>20))
	}
	if n == 0 {
		return 0, "", serverutils.BadRequest("file is empty")
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *documentService) span(ctx context.Context, name string, doc *entity.Document) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("document.id", doc.Id.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// process runs extract, chunk, embed and persist in order. Chunks, images
// and the completed status are written in one unit of work. Any failure,
// including a panic in the pipeline, leaves the document failed.
func (s *documentService) process(ctx context.Context, doc *entity.Document, path string) (chunkCount int, err error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := doc.TransitionTo(entity.DocumentProcessing); err != nil {
		s.fail(ctx, doc, path, err)
		return 0, serverutils.Internal(err)
	}
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		s.fail(ctx, doc, path, err)
		return 0, serverutils.Internal(err)
	}

	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("pipeline panic: %v", r)
			s.fail(ctx, doc, path, cause)
			chunkCount, err = 0, serverutils.Unprocessable("document processing failed", cause)
		}
	}()

	started := time.Now()
	chunks, stats, images, err := s.runPipeline(ctx, doc, path)
	if err == nil {
		err = s.persist(ctx, doc, chunks, images)
	}
	if err != nil {
		s.fail(ctx, doc, path, err)
		return 0, serverutils.Unprocessable("document processing failed", err)
	}

	s.logger.Info(documentModule, "Document processed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
		"images":      len(images),
		"degenerate":  stats.Degenerate,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	publishEvent(ctx, s.publisherService, s.logger, documentModule, events.BaseEvent{
		Type: events.DocumentProcessed,
		Data: map[string]interface{}{
			"document_id": doc.Id.String(),
			"user_id":     doc.UserId.String(),
			"title":       doc.Title,
			"chunks":      len(chunks),
		},
		OccurredAt: time.Now(),
	})
	return len(chunks), nil
}

func (s *documentService) runPipeline(ctx context.Context, doc *entity.Document, path string) ([]*entity.DocumentChunk, chunker.Stats, []*entity.DocumentImage, error) {
	extractCtx, span := s.span(ctx, "document.extract", doc)
	content, err := s.extractor.Extract(extractCtx, path)
	endSpan(span, err)
	if err != nil {
		return nil, chunker.Stats{}, nil, fmt.Errorf("extract: %w", err)
	}

	if title := pdf.ExtractTitle(content); title != "" {
		doc.Title = pdf.TruncateTitle(title)
	}
	doc.SetMeta("page_count", content.PageCount)
	doc.SetMeta("pdf_metadata", content.Metadata)
	doc.SetMeta("structure", structureSummary(content.Structure))

	chunkCtx, span := s.span(ctx, "document.chunk", doc)
	pieces, stats, err := s.chunker.Chunk(chunkCtx, content)
	span.SetAttributes(attribute.Int("chunks.count", len(pieces)))
	endSpan(span, err)
	if err != nil {
		return nil, stats, nil, fmt.Errorf("chunk: %w", err)
	}
	if len(pieces) == 0 {
		return nil, stats, nil, ErrNoChunks
	}
	doc.SetMeta("chunk_stats", stats)

	embedCtx, span := s.span(ctx, "document.embed", doc)
	vectors := s.embedder.EmbedChunks(embedCtx, pieces)
	endSpan(span, nil)

	chunks := make([]*entity.DocumentChunk, len(pieces))
	var images []*entity.DocumentImage
	for i, p := range pieces {
		chunks[i] = toChunkEntity(doc.Id, p, vectors[i])
		if img, ok := p.Payload.(*chunker.ImagePayload); ok {
			row, err := s.saveImage(doc.Id, chunks[i], img)
			if err != nil {
				return nil, stats, nil, err
			}
			images = append(images, row)
		}
	}
	return chunks, stats, images, nil
}

func (s *documentService) persist(ctx context.Context, doc *entity.Document, chunks []*entity.DocumentChunk, images []*entity.DocumentImage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	if err := uow.DocumentImageRepository().CreateBulk(ctx, images); err != nil {
		return fmt.Errorf("insert images: %w", err)
	}
	if err := doc.TransitionTo(entity.DocumentCompleted); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	return uow.Commit()
}

// fail records the error on the document in a separate write and removes
// the files written for it.
func (s *documentService) fail(ctx context.Context, doc *entity.Document, path string, cause error) {
	s.logger.Error(documentModule, "Document processing failed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"error":       cause.Error(),
	})

	// a completed status that never committed is discarded
	doc.Status = entity.DocumentProcessing
	doc.ProcessedAt = nil
	_ = doc.TransitionTo(entity.DocumentFailed)
	doc.SetMeta("error", cause.Error())
	if err := s.uowFactory.NewUnitOfWork(ctx).DocumentRepository().Update(ctx, doc); err != nil {
		s.logger.Error(documentModule, "Failed to mark document failed", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
	}

	os.Remove(path)
	os.RemoveAll(s.imageDir(doc.Id))

	publishEvent(ctx, s.publisherService, s.logger, documentModule, events.BaseEvent{
		Type: events.DocumentFailed,
		Data: map[string]interface{}{
			"document_id": doc.Id.String(),
			"user_id":     doc.UserId.String(),
			"error":       cause.Error(),
		},
		OccurredAt: time.Now(),
	})
}

func (s *documentService) imageDir(documentId uuid.UUID) string {
	return filepath.Join(s.cfg.ImageDir, documentId.String())
}

// saveImage writes decodable image bytes under IMAGE_DIR/<document_id>/ and
// returns the row linking the file to its chunk. Images without bytes keep
// an empty path.
func (s *documentService) saveImage(documentId uuid.UUID, chunk *entity.DocumentChunk, img *chunker.ImagePayload) (*entity.DocumentImage, error) {
	row := &entity.DocumentImage{
		Id:         uuid.New(),
		DocumentId: documentId,
		ChunkId:    &chunk.Id,
		ImageType:  string(img.ImageType),
		Caption:    img.Caption,
		BBox:       chunk.BBox,
		Format:     img.Format,
		Width:      img.Width,
		Height:     img.Height,
		CreatedAt:  time.Now(),
	}
	if chunk.PageNumber != nil {
		row.PageNumber = *chunk.PageNumber
	}
	if len(img.Data) == 0 {
		return row, nil
	}

	dir := s.imageDir(documentId)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image dir: %w", err)
	}
	ext := img.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("page%d_img%d.%s", row.PageNumber, img.ImageIndex, ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	row.ImagePath = path
	return row, nil
}

func toChunkEntity(documentId uuid.UUID, c chunker.Chunk, vector []float32) *entity.DocumentChunk {
	out := &entity.DocumentChunk{
		Id:           uuid.New(),
		DocumentId:   documentId,
		ChunkIndex:   c.Index,
		ChunkType:    string(c.Type()),
		Content:      strings.TrimSpace(c.Content()),
		SectionTitle: c.SectionTitle,
		BBox:         c.BBox,
		Embedding:    vector,
		Metadata:     c.Metadata,
		CreatedAt:    time.Now(),
	}
	if c.Page > 0 {
		page := c.Page
		out.PageNumber = &page
	}
	return out
}

func structureSummary(st pdf.Structure) map[string]interface{} {
	sections := make([]map[string]interface{}, len(st.Sections))
	for i, sec := range st.Sections {
		sections[i] = map[string]interface{}{
			"title":    sec.Title,
			"category": string(sec.Category),
			"page":     sec.Page,
		}
	}
	return map[string]interface{}{
		"title":            st.Title,
		"sections":         sections,
		"abstract_start":   st.AbstractStart,
		"references_start": st.ReferencesStart,
		"used_fallback":    st.UsedFallback,
	}
}

func uploadResponse(doc *entity.Document, chunkCount int) *dto.UploadDocumentResponse {
	res := &dto.UploadDocumentResponse{
		Id:         doc.Id,
		Title:      doc.Title,
		Filename:   doc.Filename,
		FileSize:   doc.FileSize,
		Status:     string(doc.Status),
		ChunkCount: chunkCount,
		UploadedAt: doc.UploadedAt,
	}
	switch stats := doc.Metadata["chunk_stats"].(type) {
	case chunker.Stats:
		res.ChunkStats = map[string]interface{}{
			"total":           stats.Total,
			"by_type":         stats.ByType,
			"text_share":      stats.TextShare,
			"reference_share": stats.ReferenceShare,
			"degenerate":      stats.Degenerate,
		}
	case map[string]interface{}:
		res.ChunkStats = stats
	}
	return res
}

func (s *documentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Document, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	if doc == nil {
		return nil, serverutils.NotFound("document not found")
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) ([]dto.DocumentResponse, error) {
	specs := []specification.Specification{specification.ByUserID{UserID: userId}}
	if req != nil && req.Status != "" {
		if !entity.DocumentStatus(req.Status).Valid() {
			return nil, serverutils.BadRequest("unknown status " + req.Status)
		}
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}
	specs = append(specs, specification.OrderBy{Field: "uploaded_at", Desc: true})
	if req != nil {
		specs = append(specs, paginate(req.Limit, req.Offset)...)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	out := make([]dto.DocumentResponse, len(docs))
	for i, d := range docs {
		count, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: d.Id})
		if err != nil {
			return nil, serverutils.Internal(err)
		}
		out[i] = toDocumentResponse(d, count)
	}
	return out, nil
}

// paginate returns the window specification, or none when the request
// asks for everything.
func paginate(limit, offset int) []specification.Specification {
	if limit <= 0 && offset <= 0 {
		return nil
	}
	return []specification.Specification{specification.Pagination{Limit: limit, Offset: offset}}
}

func (s *documentService) loadChunks(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, chunkType string) ([]*entity.DocumentChunk, error) {
	specs := []specification.Specification{
		specification.ByDocumentID{DocumentID: id},
		specification.OrderBy{Field: "chunk_index"},
	}
	if chunkType != "" {
		specs = append(specs, specification.ByChunkType{ChunkType: chunkType})
	}
	chunks, err := uow.DocumentChunkRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	return chunks, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.loadChunks(ctx, uow, id, "")
	if err != nil {
		return nil, err
	}
	images, err := uow.DocumentImageRepository().FindAll(ctx, specification.ByDocumentID{DocumentID: id})
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	res := &dto.DocumentDetailResponse{
		DocumentResponse: toDocumentResponse(doc, int64(len(chunks))),
		Chunks:           make([]dto.ChunkResponse, len(chunks)),
		Images:           make([]dto.ImageResponse, len(images)),
	}
	for i, c := range chunks {
		res.Chunks[i] = toChunkResponse(c)
		res.Chunks[i].Content = preview(c.Content, dto.ChunkPreviewRunes)
	}
	for i, img := range images {
		res.Images[i] = dto.ImageResponse{
			Id:         img.Id,
			ChunkId:    img.ChunkId,
			ImagePath:  img.ImagePath,
			ImageType:  img.ImageType,
			Caption:    img.Caption,
			PageNumber: img.PageNumber,
			Format:     img.Format,
			Width:      img.Width,
			Height:     img.Height,
		}
	}
	return res, nil
}

func (s *documentService) Chunks(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ListChunksRequest) ([]dto.ChunkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwned(ctx, uow, userId, id); err != nil {
		return nil, err
	}
	chunks, err := s.loadChunks(ctx, uow, id, req.Type)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ChunkResponse, len(chunks))
	for i, c := range chunks {
		out[i] = toChunkResponse(c)
	}
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if err := s.deleteDocument(ctx, uow, doc); err != nil {
		return serverutils.Internal(err)
	}

	publishEvent(ctx, s.publisherService, s.logger, documentModule, events.BaseEvent{
		Type: events.DocumentDeleted,
		Data: map[string]interface{}{
			"document_id": doc.Id.String(),
			"user_id":     userId.String(),
		},
		OccurredAt: time.Now(),
	})
	return nil
}

// deleteDocument removes rows in one unit of work, then the files.
func (s *documentService) deleteDocument(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentImageRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if p, ok := doc.Metadata["file_path"].(string); ok && p != "" {
		os.Remove(p)
	}
	os.RemoveAll(s.imageDir(doc.Id))
	return nil
}

func (s *documentService) Clear(ctx context.Context, userId uuid.UUID) (*dto.ClearDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	deleted := 0
	for _, d := range docs {
		if err := s.deleteDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), d); err != nil {
			return nil, serverutils.Internal(err)
		}
		deleted++
	}

	s.logger.Info(documentModule, "Documents cleared", map[string]interface{}{
		"user_id": userId.String(),
		"deleted": deleted,
	})
	publishEvent(ctx, s.publisherService, s.logger, documentModule, events.BaseEvent{
		Type: events.DocumentsCleared,
		Data: map[string]interface{}{
			"user_id": userId.String(),
			"deleted": deleted,
		},
		OccurredAt: time.Now(),
	})
	return &dto.ClearDocumentsResponse{Deleted: deleted}, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func toDocumentResponse(d *entity.Document, chunkCount int64) dto.DocumentResponse {
	meta := make(map[string]interface{}, len(d.Metadata))
	for k, v := range d.Metadata {
		if k == "file_path" {
			continue
		}
		meta[k] = v
	}
	return dto.DocumentResponse{
		Id:          d.Id,
		Title:       d.Title,
		Filename:    d.Filename,
		FileSize:    d.FileSize,
		Status:      string(d.Status),
		Metadata:    meta,
		ChunkCount:  chunkCount,
		UploadedAt:  d.UploadedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

func toChunkResponse(c *entity.DocumentChunk) dto.ChunkResponse {
	return dto.ChunkResponse{
		Id:           c.Id,
		ChunkIndex:   c.ChunkIndex,
		ChunkType:    c.ChunkType,
		Content:      c.Content,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		BBox:         c.BBox,
		Metadata:     c.Metadata,
	}
}
