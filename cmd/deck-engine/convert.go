package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-engine/internal/convert"
	"github.com/pdiddy/deck-engine/internal/tools"
	"github.com/pdiddy/deck-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <deck.pptx>",
	Short: "Render a presentation to pdf, png, or txt",
	Long: `Convert shells out to LibreOffice (and pdftoppm for png targets) to
render the presentation. The binaries are located on PATH unless
overridden in the config file under tools.soffice_path and
tools.pdftoppm_path.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("to")
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = "."
	}

	cfg := toolsConfig()
	conv, err := convert.For(convert.Target(target), cfg, tools.NewRunner())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	outputs, err := conv.Convert(ctx, args[0], outDir)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		fmt.Println(out)
	}
	return nil
}

func toolsConfig() types.ToolsConfig {
	cfg := types.ToolsConfig{
		SofficePath:  viper.GetString("tools.soffice_path"),
		PdftoppmPath: viper.GetString("tools.pdftoppm_path"),
		Timeout:      viper.GetDuration("tools.timeout"),
	}
	if cfg.SofficePath == "" {
		cfg.SofficePath = "soffice"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return cfg
}

func init() {
	convertCmd.Flags().String("to", "pdf", "target format: pdf, png, or txt")
	convertCmd.Flags().String("out", "", "output directory (default current directory)")

	rootCmd.AddCommand(convertCmd)
}
