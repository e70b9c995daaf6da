package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "albumpress",
	Short: "Design photo albums and export them as print-ready PDFs",
	Long: `AlbumPress turns photo album designs (pages of positioned photos, text,
and shapes) into print-ready PDF files using a headless browser engine.
It ships a web API for managing albums and export tasks, plus one-shot
CLI exports.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
