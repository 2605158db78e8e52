package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/internal/repository/contract"
	"research-rag-be/internal/repository/memory"
	"research-rag-be/internal/repository/specification"
	"research-rag-be/internal/repository/unitofwork"
	"research-rag-be/pkg/chunker"
	"research-rag-be/pkg/embedding"
	"research-rag-be/pkg/events"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/pdf"
	"research-rag-be/pkg/rag/retrieval"
)

type fakeExtractor struct {
	content *pdf.Content
	err     error
	panic   string
	calls   int
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*pdf.Content, error) {
	f.calls++
	if f.panic != "" {
		panic(f.panic)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

// flakyFactory wraps the memory store and makes the document repository
// miss lookups or fail updates a set number of times.
type flakyFactory struct {
	*memory.Store
	mu         sync.Mutex
	findMisses int
	updateErrs int
}

type flakyUnitOfWork struct {
	unitofwork.UnitOfWork
	f *flakyFactory
}

type flakyDocuments struct {
	contract.DocumentRepository
	f *flakyFactory
}

func (f *flakyFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &flakyUnitOfWork{UnitOfWork: f.Store.NewUnitOfWork(ctx), f: f}
}

func (u *flakyUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &flakyDocuments{DocumentRepository: u.UnitOfWork.DocumentRepository(), f: u.f}
}

func (d *flakyDocuments) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	d.f.mu.Lock()
	miss := d.f.findMisses > 0
	if miss {
		d.f.findMisses--
	}
	d.f.mu.Unlock()
	if miss {
		return nil, nil
	}
	return d.DocumentRepository.FindOne(ctx, specs...)
}

func (d *flakyDocuments) Update(ctx context.Context, document *entity.Document) error {
	d.f.mu.Lock()
	fail := d.f.updateErrs > 0
	if fail {
		d.f.updateErrs--
	}
	d.f.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return d.DocumentRepository.Update(ctx, document)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeLLM struct {
	mu       sync.Mutex
	text     string
	err      error
	messages [][]llm.Message
}

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{
		Text:  f.text,
		Model: "fake-model",
		Usage: llm.Usage{PromptTokens: 40, CompletionTokens: 10, TotalTokens: 50},
	}, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix
	}
	return strings.Join(parts, " ")
}

// paperContent is a two-page paper without detected sections, so the
// chunker emits one text chunk per page.
func paperContent() *pdf.Content {
	page1 := "We study transformer attention for document retrieval. " + words("attention", 30) + "."
	page2 := "The methodology trains a convolutional baseline on images. " + words("convolution", 30) + "."
	return &pdf.Content{
		PageCount: 2,
		Metadata:  map[string]string{"Title": "Attention Models for Paper Retrieval"},
		Blocks: []pdf.TextBlock{
			{Index: 0, Page: 1, Text: page1, Type: pdf.BlockBody},
			{Index: 1, Page: 2, Text: page2, Type: pdf.BlockBody},
		},
		Structure: pdf.Structure{AbstractStart: -1, ReferencesStart: -1},
	}
}

type testEnv struct {
	store     *memory.Store
	extractor *fakeExtractor
	publisher *recordingPublisher
	llm       *fakeLLM
	embedder  *embedding.Service
	engine    *retrieval.Engine
	documents IDocumentService
	uploadDir string
	imageDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, memory.NewStore(), nil)
}

// newTestEnvWith builds the environment on store; the document service uses
// factory instead when it is not nil.
func newTestEnvWith(t *testing.T, store *memory.Store, factory unitofwork.RepositoryFactory) *testEnv {
	t.Helper()
	log := logger.NewNopLogger()
	if factory == nil {
		factory = store
	}
	env := &testEnv{
		store:     store,
		extractor: &fakeExtractor{content: paperContent()},
		publisher: &recordingPublisher{},
		llm:       &fakeLLM{text: "Attention is discussed in **Attention Models** [1]."},
		embedder:  embedding.NewService(embedding.NewHashingProvider(384), log),
		uploadDir: t.TempDir(),
		imageDir:  t.TempDir(),
	}
	env.engine = retrieval.NewEngine(NewCorpusLoader(store), env.embedder, env.llm, log)
	env.documents = NewDocumentService(
		DocumentServiceConfig{UploadDir: env.uploadDir, ImageDir: env.imageDir, MaxUploadBytes: 1 << 20},
		factory,
		env.extractor,
		chunker.New(chunker.DefaultConfig(), nil, log),
		env.embedder,
		env.publisher,
		log,
	)
	return env
}
