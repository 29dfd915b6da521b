package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crn-tools/crnident/pkg/ident"
	"github.com/crn-tools/crnident/pkg/subnet"
)

// subnetReport is the JSON output shape of the subnet command.
type subnetReport struct {
	Needle       string        `json:"needle"`
	Relation     string        `json:"relation"`
	Matches      []subnetMatch `json:"matches"`
	Undetermined []string      `json:"undetermined,omitempty"`
}

type subnetMatch struct {
	Network    string            `json:"network"`
	Assignment *ident.Assignment `json:"assignment"`
}

// subnetCommand creates the subnet command.
func (c *CLI) subnetCommand() *cobra.Command {
	var (
		relation   string
		budget     int64
		timeout    time.Duration
		workers    int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "subnet <needle> <haystack>",
		Short: "Find a network embedded inside others",
		Long: `Subnet searches for the needle network inside the haystack: a single
network file, a collection file, or a directory of network files. A hit
means the haystack contains an induced subnetwork structurally identical
to the needle under the chosen relation.

Haystacks smaller than the needle are skipped as definite non-matches.
Searches that trip the budget are reported as undetermined.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			rel, err := parseRelation(relation)
			if err != nil {
				return err
			}

			needle, err := loadNetwork(args[0])
			if err != nil {
				return err
			}
			haystacks, err := loadCollection(args[1])
			if err != nil {
				return err
			}
			logger.Debug("searching for embedded network",
				"needle", needle.Name(), "haystacks", len(haystacks), "relation", rel)

			prog := newProgress(logger)
			rep, err := subnet.FindAll(ctx, needle, haystacks, subnet.Options{
				Relation: rel,
				Budget:   budget,
				Timeout:  timeout,
				Workers:  workers,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Searched %d networks for %s", len(haystacks), needle.Name()))

			if jsonOutput {
				report := subnetReport{
					Needle:       needle.Name(),
					Relation:     rel.String(),
					Matches:      []subnetMatch{},
					Undetermined: rep.Undetermined,
				}
				for _, m := range rep.Matches {
					report.Matches = append(report.Matches, subnetMatch{
						Network:    m.Network.Name(),
						Assignment: m.Assignment,
					})
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if len(rep.Matches) == 0 {
				printInfo("%s is not embedded in any of the %d networks", needle.Name(), len(haystacks))
			} else {
				printSuccess("%s embeds into %d of %d networks", needle.Name(), len(rep.Matches), len(haystacks))
				for _, m := range rep.Matches {
					printDetail("%s  species=%v reactions=%v",
						m.Network.Name(), m.Assignment.Species, m.Assignment.Reactions)
				}
			}
			for _, name := range rep.Undetermined {
				printWarning("undetermined: %s (budget exhausted)", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&relation, "relation", "r", "weak", "identity relation: weak or strong")
	cmd.Flags().Int64Var(&budget, "budget", c.Config.Search.Budget, "max candidate assignments per search (0 = unlimited)")
	cmd.Flags().DurationVar(&timeout, "timeout", c.Config.Search.Timeout.Duration(), "max wall-clock time per search (0 = none)")
	cmd.Flags().IntVar(&workers, "workers", c.Config.Search.Workers, "evaluator parallelism (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")

	return cmd
}
