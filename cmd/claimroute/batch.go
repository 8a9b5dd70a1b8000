package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/narrative"
	"github.com/zen-systems/claimroute/pkg/router"
)

type batchResult struct {
	ClaimID string
	Result  *router.RoutingResult
	Err     error
}

func batchCmd() *cobra.Command {
	var workers int
	var draftFlag bool

	cmd := &cobra.Command{
		Use:   "batch [claims.json|claims.yaml]",
		Short: "Route every claim in a document concurrently and print aggregate metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(engineOverrides{draft: draftFlag})
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			claims, err := claim.LoadBatchFile(args[0])
			if err != nil {
				return err
			}

			r, err := router.New(cfg.Engine, router.WithLogger(logger))
			if err != nil {
				return err
			}

			var drafter *narrative.Drafter
			if cfg.Narrative.Enabled {
				if drafter, err = newDrafter(cfg); err != nil {
					logger.Warn().Err(err).Msg("narrative drafting unavailable")
					drafter = nil
				}
			}

			results := routeBatch(cmd.Context(), r, drafter, claims, workers)
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
				}
			}
			engine := r.Config()
			logger.Info().
				Int("claims", len(claims)).
				Int("failed", failed).
				Bool("advanced_optimization", engine.AdvancedOptimization).
				Str("optimization_level", string(engine.OptimizationLevel)).
				Msg("batch routed")

			out := cmd.OutOrStdout()
			if err := printBatch(out, results); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return writeJSON(out, r.Metrics())
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "maximum claims routed concurrently")
	cmd.Flags().BoolVar(&draftFlag, "draft", false, "draft narratives for routed claims that need one")

	return cmd
}

// routeBatch routes all claims through one shared router with at most
// workers in flight. Results keep input order.
func routeBatch(ctx context.Context, r *router.Router, drafter *narrative.Drafter, claims []*claim.Claim, workers int) []batchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]batchResult, len(claims))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, c := range claims {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c *claim.Claim) {
			defer wg.Done()
			defer func() { <-sem }()

			res := batchResult{}
			if c != nil {
				res.ClaimID = c.ID
			}
			res.Result, res.Err = r.RouteClaim(c)
			if res.Err == nil && drafter != nil {
				drafter.Apply(ctx, res.Result)
			}
			results[i] = res
		}(i, c)
	}

	wg.Wait()
	return results
}

func printBatch(out io.Writer, results []batchResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLAIM\tROUTE\tCONFIDENCE\tHOURS\tOPTIMIZED")

	for i, res := range results {
		id := res.ClaimID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		if res.Err != nil {
			fmt.Fprintf(w, "%s\tERROR\t-\t-\t%s\n", id, res.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%t\n",
			id, res.Result.Route.Type, res.Result.Route.Confidence,
			res.Result.EstimatedCompletion.Hours, res.Result.OptimizationApplied)
	}

	return w.Flush()
}
