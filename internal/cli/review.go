package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dpshade/contract-desk/internal/commands"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/service"
)

func (c *CLI) reviewCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Analyze a PDF or DOCX contract and print the risk report",
		Long: `Upload a contract for review and run the risk analysis. Only .pdf and
.docx files are accepted. The report is printed unless --output is given;
--output - saves it under the default report filename.`,
		Example: `  contract-desk review vendor-msa.pdf
  contract-desk review vendor-msa.docx --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return errors.FileError(path, err)
			}
			if info.IsDir() {
				return errors.ValidationError(path + " is a directory")
			}

			snap, err := c.newMatter(ctx, &fieldFlags{}, "")
			if err != nil {
				return err
			}
			defer c.service.DeleteMatter(snap.ID)

			upload := models.Upload{
				Filename:  filepath.Base(path),
				SizeBytes: info.Size(),
				MimeType:  models.MimeTypeForPath(path),
			}
			result, err := c.run(ctx, "upload", map[string]any{
				"matter_id":  snap.ID,
				"filename":   upload.Filename,
				"size_bytes": int(upload.SizeBytes),
				"mime_type":  upload.MimeType,
			})
			if err != nil {
				return err
			}
			c.notify(result)

			result, err = c.run(ctx, "analyze", map[string]any{"matter_id": snap.ID})
			if err != nil {
				return err
			}
			summary := result.Data.(commands.AnalysisSummary)
			if format == "json" {
				c.notify(result)
				return printJSON(c.out, summary)
			}

			report, err := c.run(ctx, "report", map[string]any{"matter_id": snap.ID})
			if err != nil {
				return err
			}
			if output != "" {
				printAnalysis(c.errOut, summary)
				return c.writeExport(report.Data.(service.Export), output)
			}
			fmt.Fprint(c.out, report.Data.(service.Export).Content)
			printAnalysis(c.errOut, summary)
			c.notify(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
