package main

import (
	"fmt"
	"os"
	"path/filepath"

	"circuitflow/generator"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the documentation set for a prompt",
	Long: `Render the five generated documents for a prompt without a running server.
With --out the documents are written as files named after their titles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		outDir, _ := cmd.Flags().GetString("out")
		render, _ := cmd.Flags().GetBool("render")

		docs, err := generator.Generate(prompt)
		if err != nil {
			return err
		}

		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, d := range docs {
				path := filepath.Join(outDir, d.Title)
				if err := os.WriteFile(path, []byte(d.Content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		}

		var renderer *glamour.TermRenderer
		if render {
			renderer, err = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
		}
		for _, d := range docs {
			content := d.Content
			if renderer != nil {
				if content, err = renderer.Render(d.Content); err != nil {
					return fmt.Errorf("render %s: %w", d.Title, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "==> %s (%s)\n%s\n", d.Title, d.Description, content)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("prompt", "p", "", "product idea to document")
	generateCmd.Flags().StringP("out", "o", "", "write documents into this directory")
	generateCmd.Flags().Bool("render", false, "render markdown for the terminal")
	_ = generateCmd.MarkFlagRequired("prompt")
}
