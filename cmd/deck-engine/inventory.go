package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/pkg/types"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory <deck.pptx> <out-file>",
	Short: "Extract the text inventory of a presentation",
	Long: `Inventory walks every slide of the package and writes a textual
snapshot of its text-bearing shapes: position, placeholder type, and
per-paragraph text and formatting. The snapshot is keyed by positional
slide and shape identifiers and carries a structure fingerprint; edit
the snapshot externally, then feed it back with the replace command.

Identifiers are only valid against the structure they were extracted
from. Re-extract after any slide rearrangement.`,
	Args: cobra.ExactArgs(2),
	RunE: runInventory,
}

func runInventory(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = viper.GetString("inventory.format")
	}
	if format == "" {
		format = string(types.FormatJSON)
	}

	pkg, err := opc.ReadFile(args[0])
	if err != nil {
		return err
	}

	m, err := extract.Extract(pkg)
	if err != nil {
		return err
	}

	inv := inventory.Build(m)
	if err := inventory.WriteFile(inv, args[1], types.InventoryFormat(format)); err != nil {
		return err
	}

	// Per-slide parse failures are not fatal; surface them so the
	// caller knows the inventory is partial.
	slideIDs := make([]string, 0, len(inv.Errors))
	for id := range inv.Errors {
		slideIDs = append(slideIDs, id)
	}
	sort.Strings(slideIDs)
	for _, id := range slideIDs {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", id, inv.Errors[id])
	}

	fmt.Printf("Extracted %d slide(s) to %s\n", inv.SlideCount(), args[1])
	return nil
}

func init() {
	inventoryCmd.Flags().String("format", "", "output format: json or yaml (default json)")

	rootCmd.AddCommand(inventoryCmd)
}
