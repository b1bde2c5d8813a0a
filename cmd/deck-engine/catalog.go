// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-engine/internal/catalog"
	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index presentations and search their text",
	Long: `Catalog maintains a local full-text index over the text extracted
from presentations. Index decks once, then search across all of them
without reopening the files.`,
}

var catalogIndexCmd = &cobra.Command{
	Use:   "index <deck.pptx> [more.pptx...]",
	Short: "Add presentations to the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogIndex,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over cataloged decks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged decks",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	var total catalog.IndexSummary
	for _, path := range args {
		inv, err := extractInventory(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", catalog.DeckID(path), err)
			total.Failed++
			continue
		}
		summary, err := store.IndexDeck(cmd.Context(), path, inv, os.Stdout)
		total.Indexed += summary.Indexed
		total.Updated += summary.Updated
		total.Skipped += summary.Skipped
		total.Failed += summary.Failed
		_ = err // already counted and reported
	}

	fmt.Printf("%d indexed, %d updated, %d skipped, %d failed\n",
		total.Indexed, total.Updated, total.Skipped, total.Failed)
	if total.Failed > 0 && total.Failed == total.Total() {
		return fmt.Errorf("all %d deck(s) failed to index", total.Failed)
	}
	return nil
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s %s/%s: %s\n", r.DeckID, r.SlideID, r.ShapeID, r.Snippet)
	}
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	decks, err := store.Decks(cmd.Context())
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}
	for _, d := range decks {
		fmt.Printf("%-24s %3d slide(s)  %s\n", d.ID, d.SlideCount, d.Path)
	}
	return nil
}

func extractInventory(path string) (*types.Inventory, error) {
	pkg, err := opc.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := extract.Extract(pkg)
	if err != nil {
		return nil, err
	}
	return inventory.Build(m), nil
}

func openCatalog() (*catalog.Store, error) {
	cfg := types.CatalogConfig{
		CatalogDir: viper.GetString("catalog.catalog_dir"),
		MaxResults: viper.GetInt("catalog.max_results"),
	}
	if cfg.CatalogDir == "" {
		cfg.CatalogDir = ".deck-engine"
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 20
	}
	return catalog.NewStore(cfg)
}

func init() {
	catalogSearchCmd.Flags().Bool("json", false, "emit results as JSON")

	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
