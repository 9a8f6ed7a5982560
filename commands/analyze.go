package commands

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevemurr/string-analysis-server/analyzer"
	"github.com/stevemurr/string-analysis-server/store"
)

// NewAnalyzeCommand creates the analyze command, which prints the record the
// server would store for each argument without starting it.
func NewAnalyzeCommand(opts *RootOptions) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "analyze <value>...",
		Short: "Print the analysis of one or more strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			now := time.Now().UTC()
			for _, value := range args {
				props := analyzer.Analyze(value)
				rec := store.Record{
					ID:         props.SHA256Hash,
					Value:      value,
					Properties: props,
					CreatedAt:  now,
				}
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "one JSON object per line")
	return cmd
}
