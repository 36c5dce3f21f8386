package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/createwith/invoicepdf/compose"
	"github.com/createwith/invoicepdf/config"
	"github.com/createwith/invoicepdf/models"
	"github.com/createwith/invoicepdf/normalize"
	"github.com/createwith/invoicepdf/render"
	"github.com/spf13/cobra"
)

var (
	flagEngine    string
	flagOutputDir string
)

var renderCmd = &cobra.Command{
	Use:   "render <payload.json>",
	Short: "Render an invoice payload file without starting the server",
	Long: `Render reads an invoice payload from a file (or "-" for stdin), runs it
through the same normalization and layout as the API, and writes the result
next to --output_dir.

Examples:
  invoicepdf render invoice.json
  invoicepdf render invoice.json --engine draft --output_dir ./out
  cat invoice.json | invoicepdf render - --engine markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&flagEngine, "engine", "", "Render engine: chrome, draft or markdown (default: $RENDER_ENGINE)")
	renderCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagEngine != "" {
		cfg.RenderEngine = flagEngine
	}

	in := os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening payload: %w", err)
		}
		defer f.Close()
		in = f
	}

	raw, err := normalize.DecodePayload(in)
	if err != nil {
		return err
	}

	org := models.DefaultOrganization()
	inv := normalize.New(org).Normalize(raw)
	doc, err := compose.New(org.Brand).Compose(inv)
	if err != nil {
		return err
	}

	engine, err := render.New(cfg.RenderEngine, render.Options{
		BrowserURL:  cfg.BrowserURL,
		BrowserBin:  cfg.BrowserBin,
		NoSandbox:   cfg.NoSandbox,
		Concurrency: 1,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RenderTimeout)
		defer cancel()
	}
	data, err := engine.Render(ctx, doc)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	path, err := writeOutput(flagOutputDir, normalize.Filename(inv.InvoiceNumber), engine.Extension(), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

// writeOutput stores data under dir, swapping the filename's extension for ext.
func writeOutput(dir, fileName, ext string, data []byte) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, strings.TrimSuffix(fileName, filepath.Ext(fileName))+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}
