package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/albumpress/albumpress/internal/config"
	"github.com/albumpress/albumpress/internal/export"
	"github.com/albumpress/albumpress/internal/render"
	"github.com/albumpress/albumpress/internal/store"
	"github.com/albumpress/albumpress/internal/store/memory"
	"github.com/albumpress/albumpress/internal/store/sqlite"
	"github.com/albumpress/albumpress/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the AlbumPress web server.
The server exposes the album, page, and export APIs and runs the shared
headless render engine plus the export janitor.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides HOST)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (overrides SESSION_SECRET)")
}

// openStore selects the album store backend from config.
func openStore(cfg *config.Config) (store.AlbumStore, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := sqlite.NewAlbumStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "memory", "":
		return memory.NewAlbumStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if secret, _ := cmd.Flags().GetString("session-secret"); secret != "" {
		cfg.Auth.SessionSecret = secret
	}

	albumStore, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := render.NewEngine(cfg.Render.SettleDelay, cfg.Render.Timeout)
	defer engine.Shutdown()

	manager := export.NewManager(albumStore, engine, cfg.Export.Dir)
	manager.StartJanitor(cfg.Export.CleanupInterval, cfg.Export.MaxAge)
	defer manager.StopJanitor()

	server := web.NewServer(cfg, albumStore, manager)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting AlbumPress on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
