package table

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kvgrid/kvgrid/client"
	"github.com/kvgrid/kvgrid/cmd/util"
	"github.com/kvgrid/kvgrid/rpc/common"
)

var (
	tableClient *client.Client
	tbl         *client.Table

	// TableCommands represents the table command group
	TableCommands = &cobra.Command{
		Use:               "table",
		Short:             "Perform table operations against the cluster",
		PersistentPreRunE: setupTableClient,
		PersistentPostRun: teardownTableClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common client flags to the table command
	util.SetupClientFlags(TableCommands)

	TableCommands.PersistentFlags().String("table", "test", util.WrapString("Name of the table to operate on"))

	// Add subcommands
	TableCommands.AddCommand(putCmd)
	TableCommands.AddCommand(getCmd)
	TableCommands.AddCommand(mgetCmd)
	TableCommands.AddCommand(scanCmd)
	TableCommands.AddCommand(workloadCmd)
}

// setupTableClient creates the client and the table handle
func setupTableClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	tableClient = c

	tbl, err = c.Table(viper.GetString("table"))
	return err
}

// teardownTableClient closes the client after the command ran
func teardownTableClient(_ *cobra.Command, _ []string) {
	if tbl != nil {
		_ = tbl.Close()
	}
	if tableClient != nil {
		_ = tableClient.Close()
	}
}

// parseColumn splits a "family:qualifier" argument
func parseColumn(arg string) (family, qualifier string, err error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid column %q (expected family:qualifier)", arg)
	}
	return parts[0], parts[1], nil
}

// parseColumnsFlag splits a comma-separated list of "family:qualifier" pairs
func parseColumnsFlag(value string) ([][2]string, error) {
	if value == "" {
		return nil, nil
	}
	var columns [][2]string
	for _, arg := range strings.Split(value, ",") {
		family, qualifier, err := parseColumn(strings.TrimSpace(arg))
		if err != nil {
			return nil, err
		}
		columns = append(columns, [2]string{family, qualifier})
	}
	return columns, nil
}

// printResult prints a row result in "row: family:qualifier=value" form
func printResult(res *client.Result) {
	if res.Empty() {
		fmt.Printf("%s: not found\n", res.Row())
		return
	}
	for _, c := range res.Cells() {
		printCell(res.Row(), c)
	}
}

func printCell(row []byte, c common.Cell) {
	fmt.Printf("%s: %s:%s=%s (ts=%d)\n", row, c.Family, c.Qualifier, c.Value, c.Timestamp)
}
