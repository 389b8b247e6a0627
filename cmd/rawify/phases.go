package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wdm0006/rawify/pkg/augment"
	"github.com/wdm0006/rawify/pkg/config"
	"github.com/wdm0006/rawify/pkg/hub"
	"github.com/wdm0006/rawify/pkg/inspect"
	"github.com/wdm0006/rawify/pkg/rawify"
)

var downloadCmd = &cobra.Command{
	Use:   "download <dir>",
	Short: "Download a dataset snapshot into dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataset, _ := cmd.Flags().GetString("dataset")
		repoType, _ := cmd.Flags().GetString("repo-type")
		revision, _ := cmd.Flags().GetString("revision")
		subsets, _ := cmd.Flags().GetStringSlice("subset")
		pattern, _ := cmd.Flags().GetString("allow-pattern")
		client := hub.NewClient()
		client.Logger = slog.Default()
		opt := hub.SnapshotOptions{RepoType: repoType, Revision: revision, LocalDir: args[0], AllowPatterns: hub.SubsetPatterns(pattern, subsets)}
		paths, err := client.SnapshotDownload(cmd.Context(), dataset, opt)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.parquet>",
	Short: "Print the schema of a Parquet file, and optionally one row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := inspect.Options{}
		if cmd.Flags().Changed("index") {
			idx, _ := cmd.Flags().GetInt64("index")
			opt.Index = &idx
		}
		opt.Profile, _ = cmd.Flags().GetBool("profile")
		opt.TopK, _ = cmd.Flags().GetInt("top")
		return inspect.Inspect(args[0], opt, cmd.OutOrStdout())
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <input-root> <output-root>",
	Short: "Convert every Parquet file under input-root to JSON Lines under output-root",
	Long: `Convert walks input-root recursively and writes one .jsonl file per .parquet
file, mirroring the directory structure under output-root. Files that fail to
convert are reported and skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := rawify.ConvertTree(cmd.Context(), args[0], args[1], rawify.Options{Logger: slog.Default()})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "convert: %s\n", sum)
		return nil
	},
}

var augmentCmd = &cobra.Command{
	Use:   "augment <input-dir> <output-dir>",
	Short: "Add a text field joining input and output to every JSON Lines record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := augment.Options{Logger: slog.Default()}
		opt.InputField, _ = cmd.Flags().GetString("input-field")
		opt.OutputField, _ = cmd.Flags().GetString("output-field")
		opt.TextField, _ = cmd.Flags().GetString("text-field")
		if cmd.Flags().Changed("separator") {
			sep, _ := cmd.Flags().GetString("separator")
			opt.Separator = &sep
		}
		sum, err := augment.AugmentDir(cmd.Context(), args[0], args[1], opt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "augment: %s\n", sum)
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("dataset", config.DefaultDatasetID, "hub repository id")
	downloadCmd.Flags().String("repo-type", config.DefaultRepoType, "repository type: dataset, model or space")
	downloadCmd.Flags().String("revision", config.DefaultRevision, "branch, tag or commit")
	downloadCmd.Flags().StringSlice("subset", nil, "subset to download (repeatable)")
	downloadCmd.Flags().String("allow-pattern", config.DefaultAllowPattern, "file pattern; {subset} is replaced per subset")

	inspectCmd.Flags().Int64("index", 0, "row index to print")
	inspectCmd.Flags().Bool("profile", false, "print per-column statistics")
	inspectCmd.Flags().Int("top", 5, "most frequent string values listed with --profile")

	augmentCmd.Flags().String("input-field", augment.DefaultInputField, "first source field")
	augmentCmd.Flags().String("output-field", augment.DefaultOutputField, "second source field")
	augmentCmd.Flags().String("text-field", augment.DefaultTextField, "field to set")
	augmentCmd.Flags().String("separator", augment.DefaultSeparator, "separator placed between the two values")

	rootCmd.AddCommand(downloadCmd, inspectCmd, convertCmd, augmentCmd)
}
