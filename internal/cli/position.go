package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/service"
)

func (c *CLI) positionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "position",
		Aliases: []string{"positions"},
		Short:   "Fallback negotiation positions",
	}

	var format string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List negotiation positions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), "list-positions", nil)
			if err != nil {
				return err
			}
			positions := result.Data.([]models.NegotiationPosition)
			if format == "json" {
				return printJSON(c.out, positions)
			}
			printPositions(c.out, positions)
			return nil
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")

	copyCmd := &cobra.Command{
		Use:   "copy <position-id>",
		Short: "Copy a firm position to the clipboard",
		Long: `Copy a firm position to the system clipboard. When no clipboard is
available the position is printed so it can be copied by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), "copy-position", map[string]any{"position_id": args[0]})
			if err != nil {
				return err
			}
			copied := result.Data.(service.CopyResult)
			c.notify(result)
			if !copied.Copied {
				fmt.Fprintln(c.out, copied.Position.FirmPosition)
			}
			return nil
		},
	}

	cmd.AddCommand(list, copyCmd)
	return cmd
}
