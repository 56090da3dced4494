/*
iconclick is a synthetic "click the icon" reinforcement learning environment: every episode
draws a random desktop-like canvas of icons and asks for a left or right click on one of
them, and the agent moves a simulated mouse cursor in fixed steps until it clicks or runs
out of steps. Moving toward the target is rewarded by the distance gained.

The binary exercises the environment three ways: `serve` runs parallel rollouts and shows
their progress in a live web page, `rollout` runs them headless, and `play` lets a person
drive an episode from the terminal.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"iconclick/environment"
	"iconclick/rollout"
	"iconclick/scenario"
	"iconclick/server"
	"iconclick/terminal"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// options are the flags shared by all commands.
type options struct {
	configPath string
	addr       string
	workers    int
	episodes   int
	seed       uint64
	policy     string
	debug      bool
}

// debugCanvas replaces the configured canvas in debug mode, for fast, readable episodes.
var debugCanvas = environment.CanvasConfig{Width: 320, Height: 240}

func main() {
	for _, envFile := range []string{
		".env",
		"../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iconclick",
		Short: "iconclick is a synthetic click-the-icon environment for reinforcement learning agents.",
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", envOrDefault("ICONCLICK_CONFIG", "./config.yaml"), "environment config file")
	flags.StringVar(&opts.addr, "addr", envOrDefault("ICONCLICK_ADDR", ":8080"), "address the live view listens on")
	flags.IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of rollout workers")
	flags.IntVar(&opts.episodes, "episodes", 0, "stop after this many episodes; 0 runs until the deadline or interrupt")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed; 0 takes the config seed, or the clock")
	flags.StringVar(&opts.policy, "policy", "oracle", "rollout policy: oracle or random")
	flags.BoolVar(&opts.debug, "debug", false, "debug mode: small canvas and per-episode logs")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run rollouts and serve their live progress over http",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "rollout",
			Short: "Run rollouts headless and report their statistics",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRollout(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "play",
			Short: "Play episodes in the terminal: arrows move, z/x click, r resets, q quits",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPlay(cmd, opts)
			},
		},
	)
	return rootCmd
}

func envOrDefault(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// loadConfig reads the config file, falling back to defaults when the default file is absent,
// and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*environment.Config, error) {
	var cfg *environment.Config
	if _, statErr := os.Stat(opts.configPath); statErr != nil && !cmd.Flags().Changed("config") {
		log.Printf("no config at %s, using defaults", opts.configPath)
		def := environment.DefaultConfig()
		cfg = &def
	} else {
		var err error
		if cfg, err = environment.FromYaml(opts.configPath); err != nil {
			return nil, err
		}
	}

	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.debug {
		cfg.Canvas = debugCanvas
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rolloutOptions resolves the rollout parameters: flags win over config hyper parameters.
func rolloutOptions(cmd *cobra.Command, opts *options, cfg *environment.Config) (ropts rollout.Options, err error) {
	ropts.Workers = opts.workers
	if !cmd.Flags().Changed("workers") {
		ropts.Workers = int(cfg.GetHyperParamOrDefault("workers", float64(opts.workers)))
	}
	ropts.Episodes = opts.episodes
	if !cmd.Flags().Changed("episodes") {
		ropts.Episodes = int(cfg.GetHyperParamOrDefault("episodes", 0))
	}
	ropts.Policy, err = rollout.PolicyByName(opts.policy, cfg.GetHyperParamOrDefault("epsilon", 0.1))
	return
}

// withInterrupt returns a context cancelled on ctrl-c.
func withInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// logProgress returns a progress hook logging every nth episode, or every episode in debug mode.
func logProgress(debug bool, every int) rollout.ProgressFunc {
	return func(_ context.Context, p rollout.Progress) {
		if !debug && p.Episodes%every != 0 {
			return
		}
		if debug && p.Last != nil {
			log.Printf("episode %d (%v): %q success=%d steps=%d return=%.1f",
				p.Episodes, p.Last.EpisodeID, p.Last.Task.Text, p.Last.Eval.Success, len(p.Last.Steps), p.Last.Return)
			return
		}
		log.Printf("episodes=%d success_rate=%.3f mean_return=%.2f mean_steps=%.1f",
			p.Episodes, p.SuccessRate, p.MeanReturn, p.MeanSteps)
	}
}

func runServe(cmd *cobra.Command, opts *options) (err error) {
	var cfg *environment.Config
	if cfg, err = loadConfig(cmd, opts); err != nil {
		return
	}
	var ropts rollout.Options
	if ropts, err = rolloutOptions(cmd, opts, cfg); err != nil {
		return
	}

	appCtx, appCancel := withInterrupt(context.Background())
	defer appCancel()

	srv := server.NewServer(appCtx, opts.addr)
	logFn := logProgress(opts.debug, 1000)
	ropts.Progress = func(ctx context.Context, p rollout.Progress) {
		srv.Publish(ctx, p)
		logFn(ctx, p)
	}

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(func() error {
		return srv.Serve(groupCtx)
	})
	group.Go(func() error {
		rolloutCtx, cancel, err := cfg.WithRolloutDeadline(groupCtx)
		if err != nil {
			return err
		}
		defer cancel()

		icons := scenario.NewSyntheticCatalog(cfg.IconSize)
		stats, err := rollout.Run(rolloutCtx, *cfg, icons, ropts)
		if err != nil {
			return err
		}
		logFn(rolloutCtx, stats.Snapshot())
		log.Println("rollouts finished; still serving, ctrl-c to quit")
		return nil
	})
	return group.Wait()
}

func runRollout(cmd *cobra.Command, opts *options) (err error) {
	var cfg *environment.Config
	if cfg, err = loadConfig(cmd, opts); err != nil {
		return
	}
	var ropts rollout.Options
	if ropts, err = rolloutOptions(cmd, opts, cfg); err != nil {
		return
	}
	if ropts.Episodes == 0 && cfg.RolloutDeadline == nil {
		log.Println("no episode limit or deadline: running until interrupted")
	}
	ropts.Progress = logProgress(opts.debug, 100)

	appCtx, appCancel := withInterrupt(context.Background())
	defer appCancel()

	rolloutCtx, cancel, err := cfg.WithRolloutDeadline(appCtx)
	if err != nil {
		return
	}
	defer cancel()

	var stats *rollout.Stats
	icons := scenario.NewSyntheticCatalog(cfg.IconSize)
	if stats, err = rollout.Run(rolloutCtx, *cfg, icons, ropts); err != nil {
		return
	}

	p := stats.Snapshot()
	fmt.Printf("episodes=%d successes=%d success_rate=%.3f mean_return=%.2f mean_steps=%.1f\n",
		p.Episodes, p.Successes, p.SuccessRate, p.MeanReturn, p.MeanSteps)
	return nil
}

func runPlay(cmd *cobra.Command, opts *options) (err error) {
	var cfg *environment.Config
	if cfg, err = loadConfig(cmd, opts); err != nil {
		return
	}

	var ep *environment.Episode
	if ep, err = environment.New(*cfg, scenario.NewSyntheticCatalog(cfg.IconSize), cfg.NewRand()); err != nil {
		return
	}

	var screen tcell.Screen
	if screen, err = tcell.NewScreen(); err != nil {
		return
	}
	if err = screen.Init(); err != nil {
		return
	}
	defer screen.Fini()

	appCtx, appCancel := withInterrupt(context.Background())
	defer appCancel()

	if err = terminal.Play(appCtx, ep, screen); err != nil && !errors.Is(err, context.Canceled) {
		return
	}
	return nil
}
