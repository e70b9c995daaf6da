package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/config"
	"github.com/albumpress/albumpress/internal/markup"
	"github.com/albumpress/albumpress/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export <album-id>",
	Short: "Export one album straight to a PDF file",
	Long: `Render a stored album to a PDF file without going through the web API.
Requires the sqlite storage backend; the in-memory backend has nothing
to export after a restart.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output PDF path (defaults to <album-id>.pdf)")
	exportCmd.Flags().String("user", "", "Owner of the album (defaults to AUTH_USERNAME)")
	exportCmd.Flags().StringSlice("pages", nil, "Page ids to export (defaults to all pages)")
	exportCmd.Flags().String("format", "", "Paper format: A4, A3, Letter, Legal")
	exportCmd.Flags().String("orientation", "", "Page orientation: portrait or landscape")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	albumID := args[0]

	if cfg.Storage.Backend != "sqlite" {
		return errors.New("export requires STORAGE_BACKEND=sqlite")
	}

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		userID = cfg.Auth.Username
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = albumID + ".pdf"
	}
	pageIDs, _ := cmd.Flags().GetStringSlice("pages")

	opts := render.DefaultOptions()
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		opts.Format = render.Format(format)
	}
	if orientation, _ := cmd.Flags().GetString("orientation"); orientation != "" {
		opts.Orientation = render.Orientation(orientation)
	}

	albumStore, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	a, err := albumStore.GetAlbum(ctx, albumID, userID)
	if err != nil {
		return fmt.Errorf("loading album %s: %w", albumID, err)
	}
	pages, err := albumStore.GetPages(ctx, albumID, userID, pageIDs)
	if err != nil {
		return fmt.Errorf("loading pages: %w", err)
	}

	doc, err := markup.Generate(*a, pages, album.CanvasSizeByID(a.CanvasSizeID), album.ThemeByID(a.ThemeID))
	if err != nil {
		return fmt.Errorf("generating markup: %w", err)
	}

	engine := render.NewEngine(cfg.Render.SettleDelay, cfg.Render.Timeout)
	defer engine.Shutdown()

	fmt.Printf("Rendering %q (%d pages)...\n", a.Name, len(pages))
	pdf, err := engine.RenderToPDF(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}

	if err := os.WriteFile(output, pdf, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", output, len(pdf))
	return nil
}
