package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crn-tools/crnident/pkg/cluster"
)

// clusterReport is the JSON output shape of the cluster command.
type clusterReport struct {
	Algorithm    string              `json:"algorithm"`
	Relation     string              `json:"relation"`
	Networks     int                 `json:"networks"`
	Searched     int                 `json:"searched"`
	Clusters     [][]string          `json:"clusters"`
	Undetermined []cluster.Pair      `json:"undetermined,omitempty"`
	Violations   []cluster.Violation `json:"violations,omitempty"`
}

// clusterCommand creates the cluster command.
func (c *CLI) clusterCommand() *cobra.Command {
	var (
		algorithm   string
		relation    string
		budget      int64
		pairTimeout time.Duration
		workers     int
		parallelism int
		dotPath     string
		svgPath     string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "cluster <collection>",
		Short: "Partition a collection into structural identity classes",
		Long: `Cluster reads a collection file (or a directory of network files) and
partitions it so that every pair inside a class is structurally identical
under the chosen relation.

The sirn algorithm buckets networks by fingerprint before searching;
naive buckets by shape only and exists as the correctness baseline.
Budgeted searches can leave pairs undetermined; those pairs are reported
and conservatively kept apart. Non-transitive merges are reported as
violations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			rel, err := parseRelation(relation)
			if err != nil {
				return err
			}
			var algo cluster.Algorithm
			switch algorithm {
			case "", "sirn":
				algo = cluster.SIRN
			case "naive":
				algo = cluster.Naive
			default:
				return fmt.Errorf("unknown algorithm %q (use sirn or naive)", algorithm)
			}

			nets, err := loadCollection(args[0])
			if err != nil {
				return err
			}
			logger.Debug("clustering collection",
				"networks", len(nets), "algorithm", algo, "relation", rel)

			prog := newProgress(logger)
			var sp *Spinner
			if !jsonOutput {
				sp = newSpinnerWithContext(ctx, fmt.Sprintf("Clustering %d networks", len(nets)))
				sp.Start()
			}
			res, err := cluster.Build(ctx, nets, cluster.Options{
				Relation:      rel,
				Algorithm:     algo,
				Budget:        budget,
				PairTimeout:   pairTimeout,
				SearchWorkers: workers,
				Parallelism:   parallelism,
			})
			if sp != nil {
				sp.Stop()
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Clustered %d networks into %d classes", len(nets), len(res.Clusters)))

			if dotPath != "" || svgPath != "" {
				dot := cluster.ToDOT(res, cluster.DOTOptions{Detailed: true})
				if dotPath != "" {
					if err := os.WriteFile(dotPath, []byte(dot), 0644); err != nil {
						return fmt.Errorf("write %s: %w", dotPath, err)
					}
					printFile(dotPath)
				}
				if svgPath != "" {
					svg, err := cluster.RenderSVG(dot)
					if err != nil {
						return fmt.Errorf("render svg: %w", err)
					}
					if err := os.WriteFile(svgPath, svg, 0644); err != nil {
						return fmt.Errorf("write %s: %w", svgPath, err)
					}
					printFile(svgPath)
				}
			}

			if jsonOutput {
				report := clusterReport{
					Algorithm:    res.Algorithm.String(),
					Relation:     res.Relation.String(),
					Networks:     len(nets),
					Searched:     res.Searched,
					Undetermined: res.Undetermined,
					Violations:   res.Violations,
				}
				for _, cl := range res.Clusters {
					names := make([]string, len(cl.Members))
					for i, n := range cl.Members {
						names[i] = n.Name()
					}
					report.Clusters = append(report.Clusters, names)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printSuccess("%d identity classes (%s, %s relation, %d searches)",
				len(res.Clusters), res.Algorithm, res.Relation, res.Searched)
			printClusterStats(len(nets), len(res.Clusters), len(res.Undetermined))
			for i, cl := range res.Clusters {
				if len(cl.Members) == 1 {
					continue
				}
				line := ""
				for j, n := range cl.Members {
					if j > 0 {
						line += ", "
					}
					line += n.Name()
				}
				printDetail("class %d: %s", i, line)
			}
			for _, p := range res.Undetermined {
				printWarning("undetermined pair: %s vs %s", p.A, p.B)
			}
			for _, v := range res.Violations {
				printWarning("non-transitive merge: %s and %s via witness %s", v.A, v.B, v.Witness)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "sirn", "bucketing algorithm: sirn or naive")
	cmd.Flags().StringVarP(&relation, "relation", "r", "weak", "identity relation: weak or strong")
	cmd.Flags().Int64Var(&budget, "budget", c.Config.Search.Budget, "max candidate assignments per pairwise search (0 = unlimited)")
	cmd.Flags().DurationVar(&pairTimeout, "pair-timeout", c.Config.Search.Timeout.Duration(), "max wall-clock time per pairwise search (0 = none)")
	cmd.Flags().IntVar(&workers, "workers", c.Config.Search.Workers, "evaluator parallelism per search (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "buckets clustered concurrently (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&dotPath, "dot", "", "write a Graphviz DOT diagram to this path")
	cmd.Flags().StringVar(&svgPath, "svg", "", "render an SVG diagram to this path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")

	return cmd
}
