package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"research-rag-be/internal/bootstrap"
	"research-rag-be/internal/dto"
	"research-rag-be/internal/repository/memory"
	"research-rag-be/internal/service"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	askFiles []string
	askTopK  int
	askChat  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Index PDFs in memory and answer a question from them",
	Long: `Runs the full upload pipeline for every --pdf into an in-memory store,
then answers the question with semantic search and LLM synthesis.
With --chat the question goes through the chat flow instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askFiles, "pdf", "f", nil, "PDF file to index (repeatable)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askChat, "chat", false, "answer through a chat session")
	_ = askCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pipeline, err := bootstrap.NewPipeline(cfg, nil, sysLogger)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "ragctl-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	store := memory.NewStore()
	engine := retrieval.NewEngine(
		service.NewCorpusLoader(store),
		pipeline.Embedder,
		pipeline.LLM,
		sysLogger,
		retrieval.WithChatTopK(cfg.Search.ChatTopK),
	)
	documents := service.NewDocumentService(
		service.DocumentServiceConfig{
			UploadDir:      filepath.Join(workDir, "uploads"),
			ImageDir:       filepath.Join(workDir, "images"),
			MaxUploadBytes: int64(cfg.App.MaxUploadMB) << 20,
		},
		store,
		pipeline.Extractor,
		pipeline.Chunker,
		pipeline.Embedder,
		nil,
		sysLogger,
	)

	userId := uuid.New()
	indexed := 0
	for _, path := range askFiles {
		resp, err := indexFile(ctx, documents, userId, path)
		if err != nil {
			cmd.Printf("%s %s: %v\n", warn("skipped"), path, err)
			continue
		}
		indexed++
		cmd.Printf("%s %s %s\n", heading("indexed"), resp.Title, dim(fmt.Sprintf("(%d chunks)", resp.ChunkCount)))
	}
	if indexed == 0 {
		return errors.New("no document could be indexed")
	}
	cmd.Println()

	if askChat {
		return askViaChat(ctx, cmd, service.NewChatService(store, engine, sysLogger), userId, args[0])
	}
	return askViaSearch(ctx, cmd, service.NewSearchService(engine, cfg.Search.TopK, 0, sysLogger), userId, args[0])
}

func indexFile(ctx context.Context, documents service.IDocumentService, userId uuid.UUID, path string) (*dto.UploadDocumentResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return documents.Upload(ctx, userId, filepath.Base(path), f)
}

func askViaSearch(ctx context.Context, cmd *cobra.Command, search service.ISearchService, userId uuid.UUID, question string) error {
	resp, err := search.Search(ctx, userId, &dto.SearchRequest{Query: question, TopK: askTopK})
	if err != nil {
		return err
	}
	if resp.Degraded {
		cmd.Println(warn("LLM unavailable, showing retrieved passages only"))
	}
	cmd.Println(resp.LLMResponse)
	printSources(cmd, resp.Results)
	return nil
}

func askViaChat(ctx context.Context, cmd *cobra.Command, chat service.IChatService, userId uuid.UUID, question string) error {
	resp, err := chat.SendMessage(ctx, userId, &dto.SendChatMessageRequest{Message: question})
	if err != nil {
		return err
	}
	if resp.Degraded {
		cmd.Println(warn("LLM unavailable"))
	}
	cmd.Println(resp.Reply.Content)
	printSources(cmd, resp.Sources)
	return nil
}

func printSources(cmd *cobra.Command, results []retrieval.Result) {
	if len(results) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(heading("Sources:"))
	for i, r := range results {
		page := ""
		if r.Page != nil {
			page = fmt.Sprintf(" p%d", *r.Page)
		}
		cmd.Printf("  [%d] %s%s %s %s\n", i+1, r.DocumentTitle, page, r.ChunkType, dim(fmt.Sprintf("(%.3f)", r.Similarity)))
		cmd.Printf("      %s\n", dim(clip(r.Content, 120)))
	}
}
