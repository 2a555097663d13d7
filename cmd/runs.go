package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Jonax/SteamBadgeScan/pkg/storage"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [steam-profile-id]",
	Short: "Lists the recorded scan runs for a profile.",
	Long:  "Lists the recorded scan runs for a profile, newest first, with the cheapest badge each run found.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := flagOrConfigString(cmd, "dbpath", "db.path")
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("database not found: %s", dbPath)
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		stats, err := db.RunStats(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No runs recorded for this profile yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "RUN\tRECORDED\tBADGES\tCHEAPEST\t")
		for _, s := range stats {
			cheapest := "-"
			if s.TopBadge != "" {
				cheapest = fmt.Sprintf("%s ($%s)", s.TopBadge, s.TopPrice)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Badges, cheapest)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().Int("limit", 10, "How many runs to list")
	runsCmd.Flags().String("dbpath", "", "Path to the history database (default: steambadgescan.sqlite in CWD)")
}
