package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"research-rag-be/internal/bootstrap"
	"research-rag-be/pkg/chunker"

	"github.com/spf13/cobra"
)

var (
	chunkJSON       bool
	chunkNoAnalysis bool
	chunkPreview    int
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file.pdf]",
	Short: "Chunk a PDF and print the chunks with their statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output chunks as JSON")
	chunkCmd.Flags().BoolVar(&chunkNoAnalysis, "no-analysis", false, "skip LLM structure analysis")
	chunkCmd.Flags().IntVar(&chunkPreview, "preview", 160, "characters of content to print per chunk")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if chunkNoAnalysis {
		cfg.Ai.AnalysisEnabled = false
	}
	pipeline, err := bootstrap.NewPipeline(cfg, nil, sysLogger)
	if err != nil {
		return err
	}

	content, err := pipeline.Extractor.Extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	chunks, stats, err := pipeline.Chunker.Chunk(cmd.Context(), content)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	if chunkJSON {
		return outputChunksJSON(cmd, chunks, stats)
	}

	for _, c := range chunks {
		page := "-"
		if c.Page > 0 {
			page = fmt.Sprintf("%d", c.Page)
		}
		cmd.Printf("%s %s %s\n", heading(fmt.Sprintf("[%d]", c.Index)), c.Type(), dim("p"+page+" "+c.SectionTitle))
		cmd.Printf("    %s\n", clip(c.Content(), chunkPreview))
	}

	cmd.Println()
	cmd.Printf("%s %d total, %d dropped, %d merged, %d duplicates\n", heading("Stats:"),
		stats.Total, stats.Dropped, stats.Merged, stats.Duplicates)
	for t, n := range stats.ByType {
		cmd.Printf("  %-10s %d\n", t, n)
	}
	if stats.Degenerate {
		cmd.Println(warn("Chunk type distribution looks degenerate"))
	}
	if stats.AnalysisFailed {
		cmd.Println(warn("Structure analysis failed, sections were split by size only"))
	}
	return nil
}

type chunkView struct {
	Index    int                    `json:"index"`
	Type     chunker.ChunkType      `json:"type"`
	Page     int                    `json:"page"`
	Section  string                 `json:"section"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

func outputChunksJSON(cmd *cobra.Command, chunks []chunker.Chunk, stats chunker.Stats) error {
	views := make([]chunkView, 0, len(chunks))
	for _, c := range chunks {
		views = append(views, chunkView{
			Index:    c.Index,
			Type:     c.Type(),
			Page:     c.Page,
			Section:  c.SectionTitle,
			Content:  c.Content(),
			Metadata: c.Metadata,
		})
	}
	data, err := json.MarshalIndent(map[string]interface{}{
		"chunks": views,
		"stats":  stats,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
