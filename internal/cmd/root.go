package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	outputFmt string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "bridgeboard",
	Short: "BridgeBoard — operations dashboard for SeerrBridge",
	Long: `BridgeBoard tails the SeerrBridge log file, classifies events against a
configurable pattern catalog, serves a filterable log API and live web
dashboard, and relays alert-worthy events to a Discord webhook with a
deduplicated notification history.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.bridgeboard.yaml)")
	rootCmd.PersistentFlags().StringP("log-file", "f", "seerrbridge.log", "path (or glob) of the bridge log file")
	rootCmd.PersistentFlags().String("data-dir", ".", "directory for catalog, settings and history documents")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")

	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".bridgeboard")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("port", "8780")
	viper.SetDefault("bridge_url", "http://localhost:8777")

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
