package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/internal/replace"
	"github.com/pdiddy/deck-engine/pkg/types"
)

var replaceCmd = &cobra.Command{
	Use:   "replace <deck.pptx> <edits-file> <out.pptx>",
	Short: "Apply an edited inventory back into a presentation",
	Long: `Replace reads an inventory file previously produced by the inventory
command (and usually edited since) and writes its text back into the
named shapes of the presentation. Only the addressed text bodies are
rewritten; every other byte of the package is preserved.

In full mode (the default) every text shape in the deck is affected:
shapes absent from the edits file are cleared. In selective mode only
the shapes named in the edits file change.`,
	Args: cobra.ExactArgs(3),
	RunE: runReplace,
}

func runReplace(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = viper.GetString("replace.mode")
	}
	if mode == "" {
		mode = string(types.ModeFull)
	}

	pkg, err := opc.ReadFile(args[0])
	if err != nil {
		return err
	}

	instr, err := inventory.ReadFile(args[1])
	if err != nil {
		return err
	}

	if err := replace.Apply(pkg, instr, types.ReplaceMode(mode)); err != nil {
		return err
	}

	if err := pkg.WriteFile(args[2]); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", args[2])
	return nil
}

func init() {
	replaceCmd.Flags().String("mode", "", "replacement mode: full or selective (default full)")

	rootCmd.AddCommand(replaceCmd)
}
