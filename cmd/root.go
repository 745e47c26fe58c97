package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvgrid/kvgrid/cmd/serve"
	"github.com/kvgrid/kvgrid/cmd/table"
	"github.com/kvgrid/kvgrid/cmd/util"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvgrid",
		Short: "client for distributed sorted tables",
		Long: fmt.Sprintf(`kvgrid (v%s)

A table access client for a distributed, sorted, range-partitioned
table store, plus a standalone region server for development and
single-node setups.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvgrid",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvgrid v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(table.TableCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
