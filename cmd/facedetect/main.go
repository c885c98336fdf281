package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"facedetection/internal/config"
	"facedetection/internal/database"
	"facedetection/internal/logger"
	"facedetection/internal/repository"

	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	log     *logger.Logger
	store   repository.Store
	verbose bool

	dbURL     string
	engine    string
	modelPath string
)

var rootCmd = &cobra.Command{
	Use:           "facedetect",
	Short:         "Resolve media references and detect faces in images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if dbURL != "" {
			cfg.DatabaseURL = dbURL
		}
		if engine != "" {
			cfg.Engine = engine
		}
		if modelPath != "" {
			cfg.ModelPath = modelPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var w io.Writer = io.Discard
		if verbose {
			w = os.Stderr
		}
		log = logger.New(w)

		var err error
		store, err = database.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "SQLite path or postgres:// URL (default: $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "Detection engine: yunet or onnx (default: $ENGINE)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "Path to the ONNX model (default: $MODEL_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
