package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

// fingerprintEntry is the JSON output shape of one fingerprinted network.
type fingerprintEntry struct {
	Name        string `json:"name"`
	Species     int    `json:"species"`
	Reactions   int    `json:"reactions"`
	Fingerprint string `json:"fingerprint"`
	Typed       string `json:"typed_fingerprint"`
}

// fingerprintCommand creates the fingerprint command.
func (c *CLI) fingerprintCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "fingerprint <path>...",
		Short: "Print permutation-invariant fingerprints",
		Long: `Fingerprint prints the permutation-invariant hash of each network.
Networks with different fingerprints are never weakly identical; equal
fingerprints mark candidates for the full search. The typed fingerprint
additionally mixes in species and reaction kind tags and plays the same
role for strong identity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []fingerprintEntry
			for _, path := range args {
				nets, err := loadCollection(path)
				if err != nil {
					return err
				}
				for _, n := range nets {
					entries = append(entries, fingerprintEntry{
						Name:        n.Name(),
						Species:     n.NumSpecies(),
						Reactions:   n.NumReactions(),
						Fingerprint: n.Fingerprint().String(),
						Typed:       n.TypedFingerprint().String(),
					})
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				printKeyValue(e.Name, e.Fingerprint+StyleDim.Render("  typed:"+e.Typed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")
	return cmd
}
