package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jonax/SteamBadgeScan/internal/utils"
	"github.com/Jonax/SteamBadgeScan/pkg/badge"
	"github.com/Jonax/SteamBadgeScan/pkg/checkpoint"
	"github.com/Jonax/SteamBadgeScan/pkg/pipeline"
	"github.com/Jonax/SteamBadgeScan/pkg/steam"
	"github.com/Jonax/SteamBadgeScan/pkg/storage"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd runs the whole scan: all five stages, in order, for one profile.
var rootCmd = &cobra.Command{
	Use:   "steambadgescan [steam-profile-id]",
	Short: "Find the cheapest Steam badges a profile can still level up.",
	Long: `steambadgescan walks a public Steam profile through five stages: the
games catalog, badge discovery, per-card progress, Community Market
listings, and a final price ranking. Every stage writes a JSON checkpoint
under the output directory, so an interrupted scan picks up where it
stopped; delete the directory to scan from scratch.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.steambadgescan.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	rootCmd.Flags().StringP("output", "o", "output", "Directory for the stage checkpoint files")
	rootCmd.Flags().String("csv", "results.csv", "Path of the CSV report")
	rootCmd.Flags().Duration("delay-min", time.Second, "Minimum pause after each remote fetch")
	rootCmd.Flags().Duration("delay-max", 5*time.Second, "Maximum pause after each remote fetch")
	rootCmd.Flags().Int("search-retries", steam.DefaultSearchRetries, "Attempts before giving up on a busy market search")
	rootCmd.Flags().Bool("strict-match", false, "Leave ambiguous market listings unassigned instead of picking the first candidate")
	rootCmd.Flags().Bool("db", false, "Record the ranked results in the history database")
	rootCmd.Flags().String("dbpath", "", "Path to the history database (default: steambadgescan.sqlite in CWD)")
}

func runScan(cmd *cobra.Command, args []string) error {
	profile := args[0]
	proxy, _ := cmd.Flags().GetString("proxy")
	outputDir, _ := cmd.Flags().GetString("output")
	csvPath, _ := cmd.Flags().GetString("csv")
	strict, _ := cmd.Flags().GetBool("strict-match")
	useDB, _ := cmd.Flags().GetBool("db")

	client, err := steam.NewClient(steam.Config{
		Profile:       profile,
		Proxy:         proxy,
		DelayMin:      flagOrConfigDuration(cmd, "delay-min", "delay.min"),
		DelayMax:      flagOrConfigDuration(cmd, "delay-max", "delay.max"),
		SearchRetries: flagOrConfigInt(cmd, "search-retries", "search.retries"),
	})
	if err != nil {
		return err
	}

	lock, err := utils.NewScanLock(outputDir)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	store, err := checkpoint.NewStore(outputDir)
	if err != nil {
		return err
	}

	pipe := pipeline.New(client, store, pipeline.Options{StrictMatch: strict, CSVPath: csvPath})
	if err := pipe.Run(cmd.Context()); err != nil {
		return err
	}

	if !useDB {
		return nil
	}
	db, err := storage.Open(flagOrConfigString(cmd, "dbpath", "db.path"))
	if err != nil {
		return err
	}
	defer db.Close()

	var results []badge.Result
	if err := store.Load(checkpoint.Results, &results); err != nil {
		return err
	}
	runID, err := db.RecordRun(cmd.Context(), profile, toRunResults(results))
	if err != nil {
		return err
	}
	utils.Log.Infof("recorded run %s (%d badges)", runID, len(results))
	return nil
}

func toRunResults(results []badge.Result) []storage.RunResult {
	out := make([]storage.RunResult, 0, len(results))
	for _, r := range results {
		out = append(out, storage.RunResult{
			Badge:        r.Name,
			AppID:        r.AppID,
			Rarity:       string(r.Rarity),
			Progress:     r.Progress,
			SetPrice:     r.SetPrice.StringFixed(2),
			Availability: r.Availability,
			Unmatched:    int64(r.Unmatched),
		})
	}
	return out
}

// Flags win when set on the command line; otherwise the config file value
// applies.
func flagOrConfigDuration(cmd *cobra.Command, flag, key string) time.Duration {
	if cmd.Flags().Changed(flag) {
		d, _ := cmd.Flags().GetDuration(flag)
		return d
	}
	return viper.GetDuration(key)
}

func flagOrConfigInt(cmd *cobra.Command, flag, key string) int {
	if cmd.Flags().Changed(flag) {
		n, _ := cmd.Flags().GetInt(flag)
		return n
	}
	return viper.GetInt(key)
}

func flagOrConfigString(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		s, _ := cmd.Flags().GetString(flag)
		return s
	}
	return viper.GetString(key)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".steambadgescan")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.steambadgescan.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Defaults for everything the config file can carry
	viper.SetDefault("delay.min", time.Second)
	viper.SetDefault("delay.max", 5*time.Second)
	viper.SetDefault("search.retries", steam.DefaultSearchRetries)
	viper.SetDefault("db.path", "steambadgescan.sqlite")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
