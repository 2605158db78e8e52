package mapper

import (
	"encoding/json"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func metaFromJSON(raw datatypes.JSON) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func bboxFromJSON(raw datatypes.JSON) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var out []float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:          d.Id,
		UserId:      d.UserId,
		Title:       d.Title,
		Filename:    d.Filename,
		ContentHash: d.ContentHash,
		FileSize:    d.FileSize,
		Status:      entity.DocumentStatus(d.Status),
		Metadata:    metaFromJSON(d.Metadata),
		UploadedAt:  d.UploadedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		UserId:      d.UserId,
		Title:       d.Title,
		Filename:    d.Filename,
		ContentHash: d.ContentHash,
		FileSize:    d.FileSize,
		Status:      string(d.Status),
		Metadata:    toJSON(d.Metadata),
		UploadedAt:  d.UploadedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

func (m *DocumentMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	var vec []float32
	if c.Embedding != nil {
		vec = c.Embedding.Slice()
	}
	return &entity.DocumentChunk{
		Id:           c.Id,
		DocumentId:   c.DocumentId,
		ChunkIndex:   c.ChunkIndex,
		ChunkType:    c.ChunkType,
		Content:      c.Content,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		BBox:         bboxFromJSON(c.BBox),
		Embedding:    vec,
		Metadata:     metaFromJSON(c.Metadata),
		CreatedAt:    c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	var vec *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		vec = &v
	}
	var bbox datatypes.JSON
	if len(c.BBox) > 0 {
		bbox = toJSON(c.BBox)
	}
	return &model.DocumentChunk{
		Id:           c.Id,
		DocumentId:   c.DocumentId,
		ChunkIndex:   c.ChunkIndex,
		ChunkType:    c.ChunkType,
		Content:      c.Content,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		BBox:         bbox,
		Embedding:    vec,
		Metadata:     toJSON(c.Metadata),
		CreatedAt:    c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunksToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ChunkToEntity(c)
	}
	return entities
}

func (m *DocumentMapper) CorpusToEntity(r *model.CorpusChunkRow) *entity.CorpusChunk {
	return &entity.CorpusChunk{
		DocumentChunk: *m.ChunkToEntity(&r.DocumentChunk),
		DocumentTitle: r.DocumentTitle,
	}
}

func (m *DocumentMapper) ImageToEntity(i *model.DocumentImage) *entity.DocumentImage {
	if i == nil {
		return nil
	}
	return &entity.DocumentImage{
		Id:         i.Id,
		DocumentId: i.DocumentId,
		ChunkId:    i.ChunkId,
		ImagePath:  i.ImagePath,
		ImageType:  i.ImageType,
		Caption:    i.Caption,
		PageNumber: i.PageNumber,
		BBox:       bboxFromJSON(i.BBox),
		Format:     i.Format,
		Width:      i.Width,
		Height:     i.Height,
		CreatedAt:  i.CreatedAt,
	}
}

func (m *DocumentMapper) ImageToModel(i *entity.DocumentImage) *model.DocumentImage {
	if i == nil {
		return nil
	}
	return &model.DocumentImage{
		Id:         i.Id,
		DocumentId: i.DocumentId,
		ChunkId:    i.ChunkId,
		ImagePath:  i.ImagePath,
		ImageType:  i.ImageType,
		Caption:    i.Caption,
		PageNumber: i.PageNumber,
		BBox:       toJSON(i.BBox),
		Format:     i.Format,
		Width:      i.Width,
		Height:     i.Height,
		CreatedAt:  i.CreatedAt,
	}
}
