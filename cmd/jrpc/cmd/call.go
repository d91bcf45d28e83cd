package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sotvokun/simple-jsonrpc/internal/runner"
)

var resultPath string
var callCmd = &cobra.Command{
	Use:   "call <method> [params...]",
	Short: "performs a single JSON-RPC call and prints the result",
	Args:  cobra.MinimumNArgs(1),
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

		out, err := r.CallOne(context.Background(), args[0], args[1:], resultPath)
		if err != nil {
			return err
		}

		fmt.Println(out)
		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&resultPath, "path", "", "print a single field of the result (gjson path)")
	rootCmd.AddCommand(callCmd)
}
