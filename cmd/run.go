package cmd

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/config"
	"github.com/olivierh59500/neuralsearch/internal/field"
	"github.com/olivierh59500/neuralsearch/internal/logger"
	"github.com/olivierh59500/neuralsearch/internal/search"
	"github.com/olivierh59500/neuralsearch/internal/ui"
)

var (
	flagAPIURL string
	flagSeed   int64
	flagWidth  int
	flagHeight int
	flagIndex  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the NeuralSearch window",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagAPIURL, "api-url", config.DefaultAPIURL, "Base URL of the search service")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed for the particle field (0 = clock)")
	runCmd.Flags().IntVar(&flagWidth, "width", config.DefaultWidth, "Window width")
	runCmd.Flags().IntVar(&flagHeight, "height", config.DefaultHeight, "Window height")
	runCmd.Flags().StringVar(&flagIndex, "index", string(field.IndexBrute), "Pair search: brute or grid")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies the run flags the user set into cfg
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = flagAPIURL
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("width") {
		cfg.Window.Width = flagWidth
	}
	if flags.Changed("height") {
		cfg.Window.Height = flagHeight
	}
	if flags.Changed("index") {
		cfg.Field.Index = field.IndexKind(flagIndex)
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Service:     "neuralsearch",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := search.NewClient(cfg.APIURL,
		search.WithTimeout(cfg.RequestTimeout),
		search.WithLogger(log.Named("client")),
	)
	if err != nil {
		return err
	}

	game, err := ui.NewGame(ui.Deps{Config: cfg, Logger: log, Backend: client})
	if err != nil {
		return fmt.Errorf("cannot start: %w", err)
	}
	defer game.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(field.ReferenceRate))

	log.Info("window opening",
		zap.String("api_url", cfg.APIURL),
		zap.Int("particles", cfg.Field.Count),
		zap.String("index", string(cfg.Field.Index)),
	)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	log.Info("window closed")
	return nil
}
