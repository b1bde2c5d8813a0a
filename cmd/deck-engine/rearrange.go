package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/internal/rearrange"
)

var rearrangeCmd = &cobra.Command{
	Use:   "rearrange <deck.pptx> <out.pptx> <order>",
	Short: "Reorder, duplicate, or drop slides",
	Long: `Rearrange rewrites the slide sequence of a presentation according to
a comma-separated list of zero-based source indices. An index may
appear more than once (the slide is duplicated) or not at all (the
slide is dropped, along with any parts only it referenced).

  deck-engine rearrange in.pptx out.pptx 0,2,2,1

produces a four-slide deck: slide 0, slide 2 twice, then slide 1.
Positional inventory identifiers are invalid after rearrangement;
re-run the inventory command against the output.`,
	Args: cobra.ExactArgs(3),
	RunE: runRearrange,
}

func runRearrange(cmd *cobra.Command, args []string) error {
	pkg, err := opc.ReadFile(args[0])
	if err != nil {
		return err
	}

	order, err := rearrange.ParseOrder(args[2], slideCount(pkg))
	if err != nil {
		return err
	}

	if err := rearrange.Rearrange(pkg, order); err != nil {
		return err
	}

	if err := pkg.WriteFile(args[1]); err != nil {
		return err
	}

	fmt.Printf("Wrote %s with %d slide(s)\n", args[1], len(order))
	return nil
}

func slideCount(pkg *opc.Package) int {
	parts, err := extract.SlideParts(pkg)
	if err != nil {
		return 0
	}
	return len(parts)
}

func init() {
	rootCmd.AddCommand(rearrangeCmd)
}
