package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zen-systems/claimroute/pkg/adapter"
	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/config"
	"github.com/zen-systems/claimroute/pkg/narrative"
	"github.com/zen-systems/claimroute/pkg/router"
)

var (
	configFile string
	debugFlag  bool
	logger     = zerolog.Nop()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claimroute",
		Short: "Score billing claims and route them to a processing pathway",
		Long: `Claimroute scores dental billing claims for complexity, urgency, value and risk,
assigns each claim a processing route, and estimates when processing will complete.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(cmd.ErrOrStderr(), debugFlag)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.claimroute/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log routing decisions to stderr")

	cmd.AddCommand(routeCmd())
	cmd.AddCommand(batchCmd())
	cmd.AddCommand(routesCmd())
	cmd.AddCommand(modelsCmd())
	return cmd
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func routeCmd() *cobra.Command {
	var draftFlag bool
	var aggressiveFlag bool
	var noOptimizeFlag bool

	cmd := &cobra.Command{
		Use:   "route [claim.json|claim.yaml]",
		Short: "Route a single claim and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(engineOverrides{aggressive: aggressiveFlag, noOptimize: noOptimizeFlag, draft: draftFlag})
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			c, err := claim.LoadFile(args[0])
			if err != nil {
				return err
			}

			r, err := router.New(cfg.Engine, router.WithLogger(logger))
			if err != nil {
				return err
			}

			result, err := r.RouteClaim(c)
			if err != nil {
				return err
			}

			if cfg.Narrative.Enabled {
				if drafter, err := newDrafter(cfg); err != nil {
					logger.Warn().Err(err).Msg("narrative drafting unavailable")
				} else {
					drafter.Apply(cmd.Context(), result)
				}
			}

			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&draftFlag, "draft", false, "draft a narrative when the routed claim needs one")
	cmd.Flags().BoolVar(&aggressiveFlag, "aggressive", false, "use the aggressive optimization level")
	cmd.Flags().BoolVar(&noOptimizeFlag, "no-optimize", false, "disable claim optimization")

	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the route table in decision order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRoutes(cmd.OutOrStdout())
		},
	}
}

func printRoutes(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tPROCESSOR\tPRIORITY\tVALIDATION\tBASE HOURS\tWHEN")

	for _, r := range router.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Type, r.Processor, r.Priority, r.Validation, r.BaseHours, r.Condition)
	}

	return w.Flush()
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List narrative adapters, models, and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(engineOverrides{})
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if resolveFlag {
				fmt.Fprintln(w, "ALIAS\tMODEL")
				names := make([]string, 0, len(cfg.Models.Aliases))
				for name := range cfg.Models.Aliases {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "%s\t%s\n", name, cfg.Models.Aliases[name])
				}
				return w.Flush()
			}

			reg, err := adapter.NewRegistry(cfg)
			if err != nil {
				return err
			}
			registered := make(map[string]bool)
			for _, name := range reg.Names() {
				registered[name] = true
			}

			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, provider := range cfg.Models.ListProviders() {
				models := strings.Join(cfg.Models.Providers[provider], ", ")
				if models == "" {
					models = "*"
				}
				status := "no key"
				if registered[provider] {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, models, status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")

	return cmd
}

type engineOverrides struct {
	aggressive bool
	noOptimize bool
	draft      bool
}

func loadConfig(o engineOverrides) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.aggressive {
		cfg.Engine.OptimizationLevel = config.OptimizationAggressive
	}
	if o.noOptimize {
		cfg.Engine.AdvancedOptimization = false
	}
	if o.draft && !cfg.Narrative.Enabled {
		cfg.Narrative.Enabled = true
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newDrafter(cfg *config.Config) (*narrative.Drafter, error) {
	adapters, err := adapter.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return narrative.New(cfg.Narrative, adapters, narrative.WithLogger(logger))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
