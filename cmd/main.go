package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/coastal-guardian/shoreline-stats/internal/delivery"
	"github.com/coastal-guardian/shoreline-stats/internal/log"
	"github.com/coastal-guardian/shoreline-stats/internal/notification"
	"github.com/coastal-guardian/shoreline-stats/internal/properties"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	debug      bool
	noArchive  bool
	noBanner   bool
}

func printBanner() {
	figure1 := figure.NewFigure("Shoreline", "isometric1", true)
	figure2 := figure.NewFigure("Stats", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func loadEnv() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func newRootCmd(run func(ctx context.Context, studyArea string, cfg properties.Config) error) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "shoreline-stats <study-area>",
		Short: "Derive shoreline change statistics for a study area",
		Long: `Extracts yearly shorelines from water-index composites, measures their
distance to a baseline shoreline and regresses the distances against time,
tide height and climate indices.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(opts.debug); err != nil {
				return err
			}
			defer log.Sync()

			if !opts.noBanner {
				printBanner()
			}

			cfg, err := properties.LoadConfig(properties.ResolvePath(opts.configPath))
			if err != nil {
				return err
			}
			if opts.noArchive {
				cfg.Output.Archive = false
			}
			return run(cmd.Context(), args[0], cfg)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML configuration")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "skip the zip archive of the vector outputs")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "do not print the banner")
	return cmd
}

func runStudyArea(ctx context.Context, studyArea string, cfg properties.Config) error {
	notifier := notification.FromEnv()
	defer func() {
		if r := recover(); r != nil {
			location := "Unknown location"
			if pc, file, line, ok := runtime.Caller(3); ok {
				location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
			}
			bannercolor.Red("PANIC: %v\nLocation: %s", r, location)
			if err := notifier.Error(studyArea, fmt.Errorf("panic: %v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())); err != nil {
				log.Errorf("failed to send notification: %v", err)
			}
			os.Exit(2)
		}
	}()

	report, err := delivery.NewPipeline(cfg).RunStudyArea(ctx, studyArea)
	if err != nil {
		if nerr := notifier.Error(studyArea, err); nerr != nil {
			log.Errorf("failed to send notification: %v", nerr)
		}
		return err
	}

	if n := report.DegenerateCount(); n > 0 {
		msg := fmt.Sprintf("%d of %d points have too few observations for a time regression", n, len(report.Stats.Points))
		log.Warnw(msg, "study_area", studyArea)
		if err := notifier.Warn(studyArea, msg); err != nil {
			log.Errorf("failed to send notification: %v", err)
		}
	}

	bannercolor.Green(report.Summary())
	if err := notifier.Success(studyArea, report.Summary()); err != nil {
		log.Errorf("failed to send notification: %v", err)
	}
	return nil
}

func main() {
	loadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(runStudyArea).ExecuteContext(ctx); err != nil {
		bannercolor.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
