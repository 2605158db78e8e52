package main

import (
	"fmt"

	"research-rag-be/pkg/pdf"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file.pdf]",
	Short: "Extract blocks, tables, images and section structure from a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	content, err := pdf.NewExtractor(pdf.WithLogger(sysLogger)).Extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	title := pdf.TruncateTitle(pdf.ExtractTitle(content))
	cmd.Printf("%s %s\n", heading("Title:"), title)
	cmd.Printf("%s %d\n", heading("Pages:"), content.PageCount)
	cmd.Printf("%s %d blocks, %d tables, %d images\n", heading("Content:"),
		len(content.Blocks), len(content.Tables), len(content.Images))

	st := content.Structure
	if st.UsedFallback {
		cmd.Println(warn("Sections detected by the fallback detector"))
	}
	cmd.Println(heading("Sections:"))
	for _, s := range st.Sections {
		cmd.Printf("  p%-3d %-14s %s\n", s.Page, s.Category, s.Title)
	}
	if len(st.Sections) == 0 {
		cmd.Println(dim("  none"))
	}
	return nil
}
