package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"research-rag-be/internal/pkg/logger"

	lpdf "github.com/ledongthuc/pdf"
)

const moduleName = "PDF_EXTRACTOR"

var metadataKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"}

type Extractor struct {
	logger     logger.ILogger
	classifier classifier
}

type Option func(*Extractor)

func WithLogger(l logger.ILogger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithHeadingPatterns adds patterns recognised as section headings.
func WithHeadingPatterns(patterns ...*regexp.Regexp) Option {
	return func(e *Extractor) {
		e.classifier.patterns = append(e.classifier.patterns, patterns...)
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger:     logger.NewNopLogger(),
		classifier: classifier{patterns: append([]*regexp.Regexp(nil), DefaultHeadingPatterns...)},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Extract(ctx context.Context, path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return e.ExtractReader(ctx, f, info.Size())
}

func (e *Extractor) ExtractReader(ctx context.Context, r io.ReaderAt, size int64) (*Content, error) {
	reader, pages, err := openReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	content := &Content{
		PageCount: pages,
		Metadata:  readMetadata(reader),
	}

	failed := 0
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.extractPage(reader, n, content); err != nil {
			failed++
			e.logger.Warn(moduleName, "Skipping unreadable page", map[string]interface{}{
				"page":  n,
				"error": err.Error(),
			})
		}
	}
	if pages > 0 && failed == pages {
		return nil, fmt.Errorf("%w: no page could be decoded", ErrUnreadablePDF)
	}

	content.Structure = DetectStructure(content.Blocks)

	e.logger.Debug(moduleName, "PDF extracted", map[string]interface{}{
		"pages":    pages,
		"blocks":   len(content.Blocks),
		"images":   len(content.Images),
		"tables":   len(content.Tables),
		"sections": len(content.Structure.Sections),
	})
	return content, nil
}

func openReader(r io.ReaderAt, size int64) (reader *lpdf.Reader, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader, pages, err = nil, 0, fmt.Errorf("%v", rec)
		}
	}()
	reader, err = lpdf.NewReader(r, size)
	if err != nil {
		return nil, 0, err
	}
	return reader, reader.NumPage(), nil
}

func readMetadata(r *lpdf.Reader) (meta map[string]string) {
	meta = map[string]string{}
	defer func() {
		if rec := recover(); rec != nil {
			meta = map[string]string{}
		}
	}()
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, k := range metadataKeys {
		if v := strings.TrimSpace(info.Key(k).Text()); v != "" {
			meta[k] = v
		}
	}
	return meta
}

func (e *Extractor) extractPage(r *lpdf.Reader, n int, content *Content) error {
	page := r.Page(n)
	if page.V.IsNull() {
		return fmt.Errorf("page object missing")
	}

	lines, err := pageLines(page)
	if err != nil {
		return err
	}

	offset := len(content.Blocks)
	blocks := assembleBlocks(lines, n)
	for i := range blocks {
		blocks[i].Index = offset + i
		blocks[i].Type = e.classifier.classify(blocks[i])
	}
	for _, l := range lines {
		l.block += offset
	}
	content.Blocks = append(content.Blocks, blocks...)

	for _, t := range detectTables(lines, n) {
		t.Index = len(content.Tables)
		content.Tables = append(content.Tables, t)
	}

	images, err := e.pageImages(page, n)
	if err != nil {
		e.logger.Warn(moduleName, "Skipping images on page", map[string]interface{}{
			"page":  n,
			"error": err.Error(),
		})
	}
	for _, img := range images {
		img.AnchorBlock = anchorAbove(content.Blocks, offset, img.BBox)
		content.Images = append(content.Images, img)
	}
	return nil
}

func pageLines(p lpdf.Page) (lines []*line, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			lines, err = nil, fmt.Errorf("decode page text: %v", rec)
		}
	}()
	return assembleLines(p.Content().Text), nil
}

// anchorAbove returns the last block of the page that sits above box, or the
// block preceding the page when none does.
func anchorAbove(blocks []TextBlock, pageStart int, box BBox) int {
	anchor := pageStart - 1
	for i := pageStart; i < len(blocks); i++ {
		if blocks[i].BBox[1] >= box[3]-1 {
			anchor = i
		}
	}
	return anchor
}
