// Command anna fits dimuon invariant mass spectra and inspects the stored
// results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/facade"
	"github.com/benjaminaudurier/anna/store"
)

var (
	steeringPath string
	settingsPath string
	storePath    string
	verbose      bool
	profileMode  string
	workers      int
	nbins        int

	logger   *zap.Logger
	settings config.Settings
	profiler interface{ Stop() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "anna",
		Short: "Fit and aggregate J/psi and Upsilon invariant mass spectra",
		Long: `anna projects dimuon candidates of ROOT ntuples in kinematic bins,
fits every bin with the fit types of a steering file and stores the spectra
in a SQLite database for later drawing and printing.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if profiler != nil {
				profiler.Stop()
			}
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&steeringPath, "config", "c", "", "steering file")
	pf.StringVar(&settingsPath, "settings", config.DefaultSettingsPath(), "settings file")
	pf.StringVar(&storePath, "store", config.DefaultStorePath(), "result database")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&profileMode, "profile", "", "write a cpu or mem profile")
	pf.IntVar(&workers, "workers", 0, "bins fitted at once (default one per CPU)")
	pf.IntVar(&nbins, "nbins", 100, "mass bins over the particle window")

	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newDrawCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newFilterMaskCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	settings, err = config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !cmd.Flags().Changed("store") {
		storePath = settings.StorePath()
	}
	if !cmd.Flags().Changed("workers") {
		workers = settings.Workers()
	}
	if !cmd.Flags().Changed("nbins") {
		nbins = settings.NBins()
	}

	zcfg := zap.NewProductionConfig()
	lvl, err := settings.LogLevel()
	if err != nil {
		return err
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	switch profileMode {
	case "":
	case "cpu":
		profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."))
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}
	return nil
}

// openFacade reads the steering file and opens the store.
func openFacade() (*facade.Facade, func(), error) {
	if steeringPath == "" {
		return nil, nil, fmt.Errorf("no steering file, use --config")
	}
	cfg, err := config.ReadFile(steeringPath, logger)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	f := facade.New(cfg, st, logger)
	f.Workers = workers
	f.NBins = nbins
	closer := func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}
	return f, closer, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("opened store", zap.String("path", storePath), zap.String("run", st.RunID()))
	return st, nil
}
