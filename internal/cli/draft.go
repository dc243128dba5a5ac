package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/contract-desk/internal/commands"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/service"
)

// fieldFlags binds one flag per matter field
type fieldFlags struct {
	values map[models.FieldKey]*string
}

var fieldFlagNames = map[models.FieldKey]string{
	models.FieldContractType:     "type",
	models.FieldClientName:       "client",
	models.FieldIndustry:         "industry",
	models.FieldFirstParty:       "first-party",
	models.FieldSecondParty:      "second-party",
	models.FieldTermDuration:     "term",
	models.FieldBusinessPurpose:  "purpose",
	models.FieldGoverningLaw:     "law",
	models.FieldRiskProfile:      "profile",
	models.FieldNegotiationFocus: "focus",
}

func bindFieldFlags(cmd *cobra.Command) *fieldFlags {
	flags := cmd.Flags()
	ff := &fieldFlags{values: make(map[models.FieldKey]*string, len(models.FieldKeys))}
	for _, key := range models.FieldKeys {
		ff.values[key] = flags.String(fieldFlagNames[key], "", key.Label())
	}
	return ff
}

// params returns the non-empty fields as a create-matter "fields" object
func (ff *fieldFlags) params() map[string]any {
	fields := make(map[string]any)
	for key, v := range ff.values {
		if *v != "" {
			fields[string(key)] = *v
		}
	}
	return fields
}

// newMatter creates a matter from field flags and an optional prebuilt draft
func (c *CLI) newMatter(ctx context.Context, ff *fieldFlags, draftID string) (service.Snapshot, error) {
	params := map[string]any{"fields": ff.params()}
	if draftID != "" {
		params["draft_id"] = draftID
	}
	result, err := c.run(ctx, "create-matter", params)
	if err != nil {
		return service.Snapshot{}, err
	}
	if draftID != "" {
		c.notify(result)
	}
	return result.Data.(service.Snapshot), nil
}

// insertClauses inserts each clause, reporting duplicates as notices
func (c *CLI) insertClauses(ctx context.Context, matterID string, clauseIDs []string) error {
	for _, id := range clauseIDs {
		result, err := c.run(ctx, "insert-clause", map[string]any{"matter_id": matterID, "clause_id": id})
		if err != nil {
			return err
		}
		c.notify(result)
	}
	return nil
}

// writeExport prints an export or writes it to path
func (c *CLI) writeExport(export service.Export, path string) error {
	if path == "" {
		_, err := fmt.Fprint(c.out, export.Content)
		return err
	}
	if path == "-" || path == "." {
		path = export.Filename
	}
	if err := os.WriteFile(path, []byte(export.Content), 0644); err != nil {
		return errors.ExportError(path, err)
	}
	fmt.Fprintln(c.errOut, noticeStyle(string(export.Notice.Kind)).Render(fmt.Sprintf("%s Saved to %s", export.Notice.Message, path)))
	return nil
}

func (c *CLI) draftCommand() *cobra.Command {
	var (
		ff      *fieldFlags
		from    string
		clauses []string
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a contract from the template for its type",
		Long: `Generate a contract from the template for its contract type, or start
from a prebuilt draft with --from, then insert library clauses.

Use --output - to save under the default filename.`,
		Example: `  contract-desk draft --client "Acme Corp" --first-party "Acme Corporation" \
      --second-party "Globex LLC" --law Delaware --clause liability-cap --format md
  contract-desk draft --from mutual-nda-shortform --second-party "Initech" --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := c.newMatter(ctx, ff, from)
			if err != nil {
				return err
			}
			defer c.service.DeleteMatter(snap.ID)

			if from == "" {
				result, err := c.run(ctx, "generate", map[string]any{"matter_id": snap.ID})
				if err != nil {
					return err
				}
				c.notify(result)
			}
			if err := c.insertClauses(ctx, snap.ID, clauses); err != nil {
				return err
			}

			result, err := c.run(ctx, "export", map[string]any{"matter_id": snap.ID, "format": format})
			if err != nil {
				return err
			}
			return c.writeExport(result.Data.(service.Export), output)
		},
	}

	ff = bindFieldFlags(cmd)
	cmd.Flags().StringVar(&from, "from", "", "Start from a prebuilt draft id")
	cmd.Flags().StringArrayVar(&clauses, "clause", nil, "Clause id to insert (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, html, md or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func (c *CLI) draftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List or load prebuilt drafts",
	}

	var format string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List prebuilt drafts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), "list-drafts", nil)
			if err != nil {
				return err
			}
			drafts := result.Data.([]models.PrebuiltDraft)
			if format == "json" {
				return printJSON(c.out, drafts)
			}
			printDrafts(c.out, drafts)
			return nil
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	var (
		ff      *fieldFlags
		clauses []string
		output  string
		loadFmt string
	)
	load := &cobra.Command{
		Use:   "load <draft-id>",
		Short: "Render a prebuilt draft, with optional field overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := c.newMatter(ctx, ff, args[0])
			if err != nil {
				return err
			}
			defer c.service.DeleteMatter(snap.ID)

			if err := c.insertClauses(ctx, snap.ID, clauses); err != nil {
				return err
			}
			result, err := c.run(ctx, "export", map[string]any{"matter_id": snap.ID, "format": loadFmt})
			if err != nil {
				return err
			}
			return c.writeExport(result.Data.(service.Export), output)
		},
	}
	ff = bindFieldFlags(load)
	load.Flags().StringArrayVar(&clauses, "clause", nil, "Clause id to insert (repeatable)")
	load.Flags().StringVarP(&loadFmt, "format", "f", "text", "Output format: text, html, md or json")
	load.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	cmd.AddCommand(list, load)
	return cmd
}

func (c *CLI) readinessCommand() *cobra.Command {
	var (
		ff      *fieldFlags
		clauses []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Check a matter against the playbook guardrails",
		Long: `Evaluate the guardrails for the given fields. Clauses passed with --clause
are inserted into a generated draft first, so the parties must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := c.newMatter(ctx, ff, "")
			if err != nil {
				return err
			}
			defer c.service.DeleteMatter(snap.ID)

			if len(clauses) > 0 {
				if _, err := c.run(ctx, "generate", map[string]any{"matter_id": snap.ID}); err != nil {
					return err
				}
				if err := c.insertClauses(ctx, snap.ID, clauses); err != nil {
					return err
				}
			}

			result, err := c.run(ctx, "readiness", map[string]any{"matter_id": snap.ID})
			if err != nil {
				return err
			}
			report := result.Data.(commands.ReadinessReport)
			if format == "json" {
				return printJSON(c.out, report)
			}
			printReadiness(c.out, report)
			return nil
		},
	}

	ff = bindFieldFlags(cmd)
	cmd.Flags().StringArrayVar(&clauses, "clause", nil, "Clause id already in the draft (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	return cmd
}

func (c *CLI) clausesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clauses",
		Short: "Browse the clause library",
	}

	var format string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clauses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), "list-clauses", nil)
			if err != nil {
				return err
			}
			return c.printClauses(result.Data.([]models.Clause), format)
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, ids or json")

	var searchFormat string
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search clause titles and triggers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), "search-clauses", map[string]any{"query": joinArgs(args)})
			if err != nil {
				return err
			}
			clauses := result.Data.([]models.Clause)
			if len(clauses) == 0 {
				fmt.Fprintln(c.errOut, "No clauses found.")
				return nil
			}
			return c.printClauses(clauses, searchFormat)
		},
	}
	search.Flags().StringVarP(&searchFormat, "format", "f", "table", "Output format: table, ids or json")

	var showFormat string
	show := &cobra.Command{
		Use:   "show <clause-id>",
		Short: "Show a clause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clause, err := c.service.Clause(args[0])
			if err != nil {
				return err
			}
			if showFormat == "json" {
				return printJSON(c.out, clause)
			}
			printClause(c.out, clause)
			return nil
		},
	}
	show.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format: text or json")

	cmd.AddCommand(list, search, show)
	return cmd
}

func (c *CLI) printClauses(clauses []models.Clause, format string) error {
	switch format {
	case "json":
		return printJSON(c.out, clauses)
	case "ids":
		for _, cl := range clauses {
			fmt.Fprintln(c.out, cl.ID)
		}
	default:
		printClauseTable(c.out, clauses)
	}
	return nil
}
