package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/procboost/boostd/internal/proctab"
	"github.com/procboost/boostd/internal/score"
	"github.com/procboost/boostd/internal/sysstats"
)

// scanCmd does a single collection pass and dumps it as JSON, handy for
// eyeballing scores without starting the daemon.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Collect one snapshot and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := proctab.NewCollector().Collect()
		if err != nil {
			return fmt.Errorf("scanning processes: %w", err)
		}
		for i := range records {
			records[i].Score = score.Compute(records[i].CPUPercent, records[i].RAMPercent)
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].Score > records[j].Score
		})

		snap, err := sysstats.NewCollector().Collect()
		if err != nil {
			return fmt.Errorf("collecting system stats: %w", err)
		}
		snap.ProcessCount = len(records)

		out, err := json.MarshalIndent(map[string]any{
			"snapshot": snap,
			"records":  records,
		}, "", " ")
		if err != nil {
			return fmt.Errorf("marshalling snapshot: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}
