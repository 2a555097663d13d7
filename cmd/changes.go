package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jonax/SteamBadgeScan/pkg/storage"
)

var changesCmd = &cobra.Command{
	Use:   "changes [steam-profile-id]",
	Short: "Show price movements between the two most recent recorded runs",
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

		changes, err := db.PriceChanges(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			fmt.Println("No changes between the two most recent runs.")
			return nil
		}
		for _, c := range changes {
			switch c.ChangeType {
			case storage.ChangeAdded:
				fmt.Printf("%-8s %s  now $%s, %d available\n", c.ChangeType, c.Badge, c.NewPrice, c.NewAvailability)
			case storage.ChangeRemoved:
				fmt.Printf("%-8s %s  was $%s\n", c.ChangeType, c.Badge, c.OldPrice)
			default:
				fmt.Printf("%-8s %s  $%s -> $%s, availability %d -> %d\n", c.ChangeType, c.Badge, c.OldPrice, c.NewPrice, c.OldAvailability, c.NewAvailability)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().String("dbpath", "", "Path to the history database (default: steambadgescan.sqlite in CWD)")
}
