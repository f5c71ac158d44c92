package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"PropScanner/internal/app"
	"PropScanner/internal/config"
	"PropScanner/internal/logging"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "propscanner",
		Short:         "Turns betting-slip screenshots into verified bet records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(scanCmd(), reviewCmd(), resolveCmd(), uploadCmd(), runCmd())
	return root
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "OCR new slip images into the record store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Scan(ctx)
			})
		},
	}
}

func reviewCmd() *cobra.Command {
	review := &cobra.Command{
		Use:   "review",
		Short: "Exchange flagged records with a human reviewer",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write flagged records to a CSV sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				path, err := a.ExportReview(ctx)
				if err != nil {
					return err
				}
				if path != "" {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return nil
			})
		},
	}

	apply := &cobra.Command{
		Use:   "apply <sheet.csv>",
		Short: "Apply a corrected CSV sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.ApplyReview(ctx, args[0])
			})
		},
	}

	review.AddCommand(export, apply)
	return review
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Settle ready records against official stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Resolve(ctx)
			})
		},
	}
}

func uploadCmd() *cobra.Command {
	var dryRun bool

	upload := &cobra.Command{
		Use:   "upload",
		Short: "Aggregate settled results and push the rollups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Upload(ctx, dryRun)
			})
		},
	}
	upload.Flags().BoolVar(&dryRun, "dry-run", false, "log the rollups without pushing or consuming results")
	return upload
}

func runCmd() *cobra.Command {
	var opts app.RunOptions

	run := &cobra.Command{
		Use:   "run",
		Short: "Scan, resolve, and upload in one pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Run(ctx, opts)
			})
		},
	}
	run.Flags().BoolVar(&opts.SkipScan, "skip-scan", false, "skip the image scan stage")
	run.Flags().BoolVar(&opts.SkipResolve, "skip-resolve", false, "skip the outcome resolution stage")
	run.Flags().BoolVar(&opts.SkipUpload, "skip-upload", false, "skip the rollup upload stage")
	return run
}

func withApp(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.Error("close application", "error", closeErr)
		}
	}()

	return fn(ctx, application)
}
