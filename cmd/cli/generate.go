package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/storygen/internal/client/cli"
	"github.com/dmitrijs2005/storygen/internal/export"
)

const flagFormat = "format"

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Extract user stories from a document and export them",
		Long: `Generate uploads a .pdf or .docx document, prints the user stories the
service returns and exports them in every requested format. When no session
is stored you are asked to sign in first.

Examples:
  # PDF and DOCX into the export directory
  storygen generate requirements.pdf

  # HTML preview only, uploaded to S3
  storygen generate --format html --s3-bucket stories requirements.docx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := cmd.Flags().GetStringSlice(flagFormat)
			if err != nil {
				return err
			}
			formats, err := parseFormats(names)
			if err != nil {
				return err
			}
			return withSession(cmd, func(app *cli.App) error {
				return app.Generate(cmd.Context(), args[0], formats)
			})
		},
	}

	cmd.Flags().StringSliceP(flagFormat, "f", []string{"pdf", "docx"}, "export formats: pdf, docx, html")
	return cmd
}

// parseFormats validates names and drops duplicates, keeping the order.
func parseFormats(names []string) ([]export.Format, error) {
	seen := make(map[export.Format]bool, len(names))
	formats := make([]export.Format, 0, len(names))
	for _, n := range names {
		f, err := export.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}
