package main

import (
	"fmt"
	"log/slog"

	"circuitflow/loader/service"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply seed files in file name order",
	Long: `Apply every .sql file of the seed directory, sorted by file name, each in one
transaction. The first failing file stops the run with a non-zero exit status.
Do not run two applies against the same database at the same time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		gateway, _ := cmd.Flags().GetString("pushgateway")
		if dir == "" {
			dir = cfg.SeedDir
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.New(db)
		_, applyErr := svc.Apply(ctx, dir)
		if gateway != "" {
			if err := push.New(gateway, "circuitflow_seed").Collector(service.FilesApplied).Push(); err != nil {
				slog.Warn("error pushing seed metrics", "gateway", gateway, "error", err)
			}
		}
		if applyErr != nil {
			return fmt.Errorf("seeding failed: %w", applyErr)
		}

		docs, err := svc.Verify(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Documents in database:")
		for _, d := range docs {
			fmt.Fprintf(out, "  - %s: %s (%s)\n", d.ID, d.Title, d.Type)
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().String("dir", "", "seed directory (default SEED_DIR)")
	applyCmd.Flags().String("pushgateway", "", "push seed metrics to this Prometheus pushgateway URL")
}
