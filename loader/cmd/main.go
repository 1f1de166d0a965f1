package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"circuitflow/config"
	"circuitflow/store"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Circuit Flow document catalog maintenance",
	Long: "Applies ordered SQL seed files to the document store, lists the catalog\n" +
		"and renders the generated documentation set locally.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		config.NewLogger(cfg.Log, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// openStore connects using the loaded configuration. The caller closes it.
func openStore(ctx context.Context) (store.DocumentStorer, error) {
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	return db, nil
}
