package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wdm0006/rawify/pkg/augment"
	"github.com/wdm0006/rawify/pkg/config"
	"github.com/wdm0006/rawify/pkg/hub"
	"github.com/wdm0006/rawify/pkg/inspect"
	"github.com/wdm0006/rawify/pkg/rawify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the phases selected in a config file",
	Long: `Run executes, in order, the download, inspect, convert and augment phases
enabled in the config file (JSON, YAML or TOML).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		return runPhases(cmd.Context(), cfg, hub.NewClient(), cmd.OutOrStdout(), slog.Default())
	},
}

func init() {
	runCmd.Flags().String("config", "", "path to run config (json, yaml or toml)")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runPhases(ctx context.Context, cfg *config.Config, client *hub.Client, stdout io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Download {
		client.Logger = logger
		// one snapshot call per subset
		var groups [][]string
		for _, p := range hub.SubsetPatterns(cfg.AllowPattern, cfg.Subsets) {
			groups = append(groups, []string{p})
		}
		for _, patterns := range groups {
			logger.Info("downloading snapshot", "dataset", cfg.DatasetID, "patterns", patterns)
			opt := hub.SnapshotOptions{RepoType: cfg.RepoType, Revision: cfg.Revision, LocalDir: cfg.DownloadRoot, AllowPatterns: patterns}
			if _, err := client.SnapshotDownload(ctx, cfg.DatasetID, opt); err != nil {
				return fmt.Errorf("download: %w", err)
			}
		}
	}
	if cfg.Inspect {
		if err := inspect.Inspect(cfg.InspectFile, inspect.Options{Index: cfg.InspectIndex}, stdout); err != nil {
			// inspection is diagnostic only
			logger.Error("inspect failed", "path", cfg.InspectFile, "error", err)
		}
	}
	if cfg.Convert {
		sum, err := rawify.ConvertTree(ctx, cfg.ConvertInput(), cfg.OutputRoot, rawify.Options{Logger: logger})
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
		fmt.Fprintf(stdout, "convert: %s\n", sum)
	}
	if cfg.Augment {
		sum, err := augment.AugmentDir(ctx, cfg.AugmentInput, cfg.AugmentOutput, augment.Options{Logger: logger})
		if err != nil {
			return fmt.Errorf("augment: %w", err)
		}
		fmt.Fprintf(stdout, "augment: %s\n", sum)
	}
	return nil
}
