package implementation

import (
	"context"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/mapper"
	"research-rag-be/internal/model"
	"research-rag-be/internal/repository/contract"
	"research-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const chunkBatchSize = 200

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, chunkBatchSize).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChunksToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentChunkRepositoryImpl) FindCompletedByUser(ctx context.Context, userId uuid.UUID) ([]*entity.CorpusChunk, error) {
	var rows []*model.CorpusChunkRow
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, documents.title AS document_title").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.user_id = ?", userId).
		Where("documents.status = ?", string(entity.DocumentCompleted)).
		Order("document_chunks.document_id, document_chunks.chunk_index").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.CorpusChunk, len(rows))
	for i, row := range rows {
		out[i] = r.mapper.CorpusToEntity(row)
	}
	return out, nil
}

type DocumentImageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentImageRepository(db *gorm.DB) contract.DocumentImageRepository {
	return &DocumentImageRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentImageRepositoryImpl) CreateBulk(ctx context.Context, images []*entity.DocumentImage) error {
	if len(images) == 0 {
		return nil
	}
	models := make([]*model.DocumentImage, len(images))
	for i, img := range images {
		models[i] = r.mapper.ImageToModel(img)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*images[i] = *r.mapper.ImageToEntity(m)
	}
	return nil
}

func (r *DocumentImageRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentImage{}).Error
}

func (r *DocumentImageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentImage, error) {
	var models []*model.DocumentImage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.DocumentImage, len(models))
	for i, m := range models {
		out[i] = r.mapper.ImageToEntity(m)
	}
	return out, nil
}
