package table

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kvgrid/kvgrid/client"
	"github.com/kvgrid/kvgrid/cmd/util"
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Runs a put/get/mget/scan workload against a table",
	Long: "Writes a batch of rows and reads them back three ways: one Get\n" +
		"per row, a single batched MultiGet, and a full Scan. Each phase is\n" +
		"timed and verified, so the command doubles as a smoke test for a\n" +
		"running cluster.",
	Args:    cobra.NoArgs,
	RunE:    runWorkload,
	PreRunE: processWorkloadConfig,
}

var (
	workloadNumRows   = 100
	workloadRowPrefix = "row_"
	workloadPuts      = true
	workloadGets      = true
	workloadMultiGets = true
	workloadScans     = true
	workloadDisplay   = false
)

func init() {
	key := "num-rows"
	workloadCmd.Flags().Int(key, 100, util.WrapString("Number of rows to write and read back"))
	key = "row-prefix"
	workloadCmd.Flags().String(key, "row_", util.WrapString("Prefix of the generated row keys"))
	key = "puts"
	workloadCmd.Flags().Bool(key, true, util.WrapString("Run the put phase"))
	key = "gets"
	workloadCmd.Flags().Bool(key, true, util.WrapString("Run the single-get phase"))
	key = "multigets"
	workloadCmd.Flags().Bool(key, true, util.WrapString("Run the multi-get phase"))
	key = "scans"
	workloadCmd.Flags().Bool(key, true, util.WrapString("Run the scan phase"))
	key = "display-results"
	workloadCmd.Flags().Bool(key, false, util.WrapString("Print every row read back"))
}

func processWorkloadConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	workloadNumRows = viper.GetInt("num-rows")
	workloadRowPrefix = viper.GetString("row-prefix")
	workloadPuts = viper.GetBool("puts")
	workloadGets = viper.GetBool("gets")
	workloadMultiGets = viper.GetBool("multigets")
	workloadScans = viper.GetBool("scans")
	workloadDisplay = viper.GetBool("display-results")

	if workloadNumRows < 1 {
		return fmt.Errorf("num-rows must be positive, got %d", workloadNumRows)
	}
	return nil
}

func workloadRowKey(i int) []byte {
	return []byte(fmt.Sprintf("%s%d", workloadRowPrefix, i))
}

func runWorkload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if workloadPuts {
		start := time.Now()
		for i := 0; i < workloadNumRows; i++ {
			key := workloadRowKey(i)
			put := client.NewPut(key).AddColumn("d", "v", key)
			if err := tbl.Put(ctx, put); err != nil {
				return fmt.Errorf("put phase failed at row %d: %w", i, err)
			}
		}
		fmt.Printf("puts:      %d rows in %v\n", workloadNumRows, time.Since(start))
	}

	if workloadGets {
		start := time.Now()
		for i := 0; i < workloadNumRows; i++ {
			key := workloadRowKey(i)
			res, err := tbl.Get(ctx, client.NewGet(key))
			if err != nil {
				return fmt.Errorf("get phase failed at row %d: %w", i, err)
			}
			if err := verifyRow(res, key); err != nil {
				return fmt.Errorf("get phase: %w", err)
			}
			if workloadDisplay {
				printResult(res)
			}
		}
		fmt.Printf("gets:      %d rows in %v\n", workloadNumRows, time.Since(start))
	}

	if workloadMultiGets {
		gets := make([]*client.Get, workloadNumRows)
		for i := range gets {
			gets[i] = client.NewGet(workloadRowKey(i))
		}

		start := time.Now()
		results := tbl.MultiGet(ctx, gets)
		elapsed := time.Since(start)

		for i, br := range results {
			if br.Err != nil {
				return fmt.Errorf("multi-get phase failed at slot %d: %w", i, br.Err)
			}
			if err := verifyRow(br.Result, workloadRowKey(i)); err != nil {
				return fmt.Errorf("multi-get phase: %w", err)
			}
			if workloadDisplay {
				printResult(br.Result)
			}
		}
		fmt.Printf("multi-get: %d rows in %v\n", workloadNumRows, elapsed)
	}

	if workloadScans {
		start := time.Now()
		sc := tbl.Scan(client.NewScan())
		defer sc.Close()

		count := 0
		for {
			res, err := sc.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("scan phase failed after %d rows: %w", count, err)
			}
			if workloadDisplay {
				printResult(res)
			}
			count++
		}
		fmt.Printf("scan:      %d rows in %v\n", count, time.Since(start))
	}

	return nil
}

// verifyRow checks that a read-back row carries the expected d:v cell
func verifyRow(res *client.Result, key []byte) error {
	if res.Empty() {
		return fmt.Errorf("row %s not found", key)
	}
	if got := res.Value("d", "v"); !bytes.Equal(got, key) {
		return fmt.Errorf("row %s: d:v=%q, want %q", key, got, key)
	}
	return nil
}
