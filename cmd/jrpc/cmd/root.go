package cmd

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sotvokun/simple-jsonrpc/pkg/config"
	"github.com/sotvokun/simple-jsonrpc/pkg/log"
)

var home string
var endpointURL string
var idMode string
var rootCmd = &cobra.Command{
	Use:   "jrpc",
	Short: "a command-line JSON-RPC 2.0 client",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&home, config.FlagHome, "", "jrpc home directory")
	rootCmd.PersistentFlags().StringVar(&endpointURL, config.FlagURL, "", "JSON-RPC endpoint url")
	rootCmd.PersistentFlags().StringVar(&idMode, config.FlagIDMode, "", "request id mode (none/timestamp/uuid/ulid)")
	viper.BindPFlag(config.FlagHome, rootCmd.PersistentFlags().Lookup(config.FlagHome))
	viper.BindPFlag(config.FlagURL, rootCmd.PersistentFlags().Lookup(config.FlagURL))
	viper.BindPFlag(config.FlagIDMode, rootCmd.PersistentFlags().Lookup(config.FlagIDMode))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func readConfig() (config.Config, error) {
	cfg, err := config.ReadConfig(true)
	if err != nil {
		return cfg, err
	}

	lvl, err := log15.LvlFromString(cfg.LogLevel)
	if err != nil {
		log.NewLog("").Warn("invalid log level, falling back to INFO", "level", cfg.LogLevel)
		lvl = log15.LvlInfo
	}
	log.SetLevel(lvl)

	return cfg, nil
}
