package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crn-tools/crnident/pkg/ident"
)

// parseRelation maps the --relation flag to an identity relation.
func parseRelation(s string) (ident.Relation, error) {
	switch s {
	case "", "weak":
		return ident.Weak, nil
	case "strong":
		return ident.Strong, nil
	default:
		return 0, fmt.Errorf("unknown relation %q (use weak or strong)", s)
	}
}

// compareResult is the JSON output shape of the compare command.
type compareResult struct {
	Outcome    string            `json:"outcome"` // match | none | undetermined
	Relation   string            `json:"relation"`
	Mode       string            `json:"mode"`
	Cached     bool              `json:"cached"`
	Assignment *ident.Assignment `json:"assignment,omitempty"`
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		relation   string
		subset     bool
		budget     int64
		timeout    time.Duration
		workers    int
		noCache    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "compare <reference> <target>",
		Short: "Decide structural identity of two networks",
		Long: `Compare decides whether two reaction networks are structurally identical:
whether some renaming of species and reactions maps one exactly onto the
other. With --subset it instead asks whether the reference is embedded in
the target as an induced subnetwork.

The search is budgeted. When the budget or timeout trips before the space
is exhausted the outcome is "undetermined", which is reported distinctly
from a confirmed non-match.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			rel, err := parseRelation(relation)
			if err != nil {
				return err
			}

			ref, err := loadNetwork(args[0])
			if err != nil {
				return err
			}
			target, err := loadNetwork(args[1])
			if err != nil {
				return err
			}

			opts := ident.Options{
				Relation: rel,
				Budget:   budget,
				Timeout:  timeout,
				Workers:  workers,
			}
			if subset {
				opts.Mode = ident.Subset
			}
			logger.Debug("comparing networks",
				"ref", ref.Name(), "target", target.Name(),
				"relation", opts.Relation, "mode", opts.Mode, "budget", budget)

			store := c.newCache(ctx, noCache)
			defer store.Close()
			searcher := ident.NewCachedSearcher(store)

			prog := newProgress(logger)
			a, cached, err := searcher.SearchWithInfo(ctx, ref, target, opts)

			res := compareResult{
				Relation: opts.Relation.String(),
				Mode:     opts.Mode.String(),
				Cached:   cached,
			}
			switch {
			case errors.Is(err, ident.ErrUndetermined):
				res.Outcome = "undetermined"
			case errors.Is(err, ident.ErrShapeMismatch):
				res.Outcome = "none"
			case err != nil:
				return err
			case a != nil:
				res.Outcome = "match"
				res.Assignment = a
			default:
				res.Outcome = "none"
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			switch res.Outcome {
			case "match":
				prog.done(fmt.Sprintf("Compared %s against %s", ref.Name(), target.Name()))
				printSuccess("%s identity: %s maps onto %s", res.Relation, ref.Name(), target.Name())
				printDetail("species assignment:   %v", a.Species)
				printDetail("reaction assignment:  %v", a.Reactions)
				printOutcome("match", cached)
			case "none":
				prog.done(fmt.Sprintf("Compared %s against %s", ref.Name(), target.Name()))
				printInfo("no %s identity between %s and %s", res.Relation, ref.Name(), target.Name())
				printOutcome("none", cached)
			case "undetermined":
				printWarning("undetermined: search budget exhausted before a decision")
				printDetail("raise --budget or --timeout to settle the pair")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&relation, "relation", "r", "weak", "identity relation: weak or strong")
	cmd.Flags().BoolVar(&subset, "subset", false, "test embedding instead of whole-network identity")
	cmd.Flags().Int64Var(&budget, "budget", c.Config.Search.Budget, "max candidate assignments to evaluate (0 = unlimited)")
	cmd.Flags().DurationVar(&timeout, "timeout", c.Config.Search.Timeout.Duration(), "max wall-clock time per search (0 = none)")
	cmd.Flags().IntVar(&workers, "workers", c.Config.Search.Workers, "evaluator parallelism (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")

	return cmd
}
