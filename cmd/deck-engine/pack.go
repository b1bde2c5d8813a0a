package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-engine/internal/opc"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <deck.pptx> <out-dir>",
	Short: "Explode a presentation into a directory of parts",
	Long: `Unpack writes every part of the package to disk under the output
directory, mirroring the part names as relative paths. Useful for
inspecting or hand-editing the raw XML; repack with the pack command.`,
	Args: cobra.ExactArgs(2),
	RunE: runUnpack,
}

var packCmd = &cobra.Command{
	Use:   "pack <parts-dir> <out.pptx>",
	Short: "Assemble a directory of parts into a presentation",
	Args:  cobra.ExactArgs(2),
	RunE:  runPack,
}

func runUnpack(cmd *cobra.Command, args []string) error {
	pkg, err := opc.ReadFile(args[0])
	if err != nil {
		return err
	}

	for _, name := range pkg.PartNames() {
		dest := filepath.Join(args[1], filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		data, _ := pkg.Part(name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("Unpacked %d part(s) to %s\n", pkg.PartCount(), args[1])
	return nil
}

func runPack(cmd *cobra.Command, args []string) error {
	root := args[0]
	pkg := opc.New()

	var names []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return err
	}

	// Zip readers tolerate any order, but a stable one keeps repacked
	// archives diffable.
	sort.Slice(names, func(i, j int) bool {
		return partLess(names[i], names[j])
	})

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		pkg.SetPart(name, data)
	}

	if err := pkg.WriteFile(args[1]); err != nil {
		return err
	}

	fmt.Printf("Packed %d part(s) into %s\n", len(names), args[1])
	return nil
}

// partLess orders the content types part first and the root rels part
// second, matching the layout of packages written by common producers.
func partLess(a, b string) bool {
	ra, rb := partRank(a), partRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func partRank(name string) int {
	switch {
	case name == opc.ContentTypesPart:
		return 0
	case name == "_rels/.rels":
		return 1
	case strings.HasPrefix(name, "ppt/"):
		return 2
	default:
		return 3
	}
}

func init() {
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(packCmd)
}
