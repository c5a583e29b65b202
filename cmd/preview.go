package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/cashier-report-converter/internal/extractor"
)

var (
	previewPages   int
	previewBackend string
	previewSave    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <input.pdf>",
	Short: "Print the raw extracted text of a PDF, page by page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]
		doc, err := extractor.Open(inputPath, backendOrDefault(previewBackend))
		if err != nil {
			return fmt.Errorf("PDF extraction failed: %w", err)
		}
		defer doc.Close()

		text := extractor.Preview(doc, previewPages)
		if !previewSave {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}

		outPath := filepath.Join(filepath.Dir(inputPath), extractor.OutputName(inputPath, ".txt"))
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("Output: %s\n", outPath)
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewPages, "pages", 0, "Number of pages to show (0 = all)")
	previewCmd.Flags().StringVar(&previewBackend, "backend", "", "PDF text backend: ledongthuc, fitz or pdftotext")
	previewCmd.Flags().BoolVar(&previewSave, "save", false, "Write the text to <input>_extraido.txt instead of stdout")
	rootCmd.AddCommand(previewCmd)
}
