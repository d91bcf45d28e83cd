package cmd

import (
	"context"
	"io/ioutil"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sotvokun/simple-jsonrpc/internal/runner"
)

var concurrency int
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "performs every call in a newline-delimited spec file",
	Long: `Performs every call listed in a file, one JSON object per line:

  {"method": "eth_blockNumber"}
  {"method": "eth_getBlockByNumber", "params": ["0x1b4", true]}

Calls are issued concurrently and may complete in any order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		r, err := runner.New(&cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		raw, err := ioutil.ReadFile(args[0])
		if err != nil {
			return err
		}

		lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}

		return r.RunFile(context.Background(), lines, concurrency)
	},
}

func init() {
	runCmd.Flags().IntVar(&concurrency, "concurrency", 4, "max in-flight calls")
	rootCmd.AddCommand(runCmd)
}
