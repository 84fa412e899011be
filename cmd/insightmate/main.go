// Package main is the Insightmate admin CLI: it runs the server and manages
// the stored user data (backups, restore, reset, cleanup).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/insightmate/internal/chat"
	"github.com/dharsanguruparan/insightmate/internal/config"
	"github.com/dharsanguruparan/insightmate/internal/extract"
	"github.com/dharsanguruparan/insightmate/internal/ingest"
	"github.com/dharsanguruparan/insightmate/internal/server"
	"github.com/dharsanguruparan/insightmate/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "insightmate: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "insightmate",
		Short:        "Insightmate personal assistant backend",
		Long:         `Insightmate serves the assistant API and manages the stored user data: summaries, backups, restores, and upload housekeeping.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newSummaryCmd(),
		newStatsCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newResetCmd(),
		newCleanupCmd(),
	)
	return cmd
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.DataDir, cfg.UserDataFile)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Insightmate API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			pipeline, err := ingest.New(extract.New(), cfg.UploadDir, cfg.MaxFileSize)
			if err != nil {
				return err
			}
			responder := chat.New(cfg.OpenAIKey, cfg.Model)
			srv := server.New(cfg, st, pipeline, responder)
			return srv.Run(cmd.Context())
		},
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print counts and types of stored links and files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			summary, err := st.Summary()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "portfolio links: %d %v\n", summary.TotalPortfolioLinks, summary.PortfolioTypes)
			fmt.Fprintf(out, "files:           %d %v\n", summary.TotalFiles, summary.FileTypes)
			fmt.Fprintf(out, "created:         %s\n", summary.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "updated:         %s\n", summary.UpdatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print upload directory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, err := ingest.New(extract.New(), cfg.UploadDir, cfg.MaxFileSize)
			if err != nil {
				return err
			}
			stats, err := pipeline.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d bytes (%.2f MB)\n",
				stats.TotalFiles, stats.TotalSizeBytes, stats.TotalSizeMB)
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full copy of the user data record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			written, err := st.Backup(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "", "Backup file path (defaults to a timestamp-named file in the data dir)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the user data record with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			ok, err := st.Restore(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("backup %s is missing or malformed", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "restore complete")
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all stored user data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("pass --yes to confirm clearing all stored data")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			if err := st.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "user data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")
	return cmd
}

func newCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove uploaded artifacts older than a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, err := ingest.New(extract.New(), cfg.UploadDir, cfg.MaxFileSize)
			if err != nil {
				return err
			}
			removed, err := pipeline.CleanupOld(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d artifacts\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Delete artifacts older than this many days")
	return cmd
}
