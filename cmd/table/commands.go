package table

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kvgrid/kvgrid/client"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [row] [family:qualifier] [value]",
		Short: "Writes one cell of a row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, qualifier, err := parseColumn(args[1])
			if err != nil {
				return err
			}

			put := client.NewPut([]byte(args[0])).AddColumn(family, qualifier, []byte(args[2]))
			if err := tbl.Put(cmd.Context(), put); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [row]",
		Short: "Reads one row, optionally projected to --columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			get := client.NewGet([]byte(args[0]))

			columnsFlag, _ := cmd.Flags().GetString("columns")
			columns, err := parseColumnsFlag(columnsFlag)
			if err != nil {
				return err
			}
			for _, col := range columns {
				get.AddColumn(col[0], col[1])
			}

			res, err := tbl.Get(cmd.Context(), get)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
	mgetCmd = &cobra.Command{
		Use:   "mget [row]...",
		Short: "Reads several rows in one batched call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gets := make([]*client.Get, len(args))
			for i, row := range args {
				gets[i] = client.NewGet([]byte(row))
			}

			for i, br := range tbl.MultiGet(cmd.Context(), gets) {
				if br.Err != nil {
					fmt.Printf("%s: error: %v\n", args[i], br.Err)
					continue
				}
				printResult(br.Result)
			}
			return nil
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Scans a row range in ascending key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scan := client.NewScan()

			start, _ := cmd.Flags().GetString("start")
			stop, _ := cmd.Flags().GetString("stop")
			if start != "" || stop != "" {
				var startKey, stopKey []byte
				if start != "" {
					startKey = []byte(start)
				}
				if stop != "" {
					stopKey = []byte(stop)
				}
				scan.WithRange(startKey, stopKey)
			}

			batch, _ := cmd.Flags().GetUint32("batch")
			scan.WithBatchSize(batch)

			columnsFlag, _ := cmd.Flags().GetString("columns")
			columns, err := parseColumnsFlag(columnsFlag)
			if err != nil {
				return err
			}
			for _, col := range columns {
				scan.AddColumn(col[0], col[1])
			}

			limit, _ := cmd.Flags().GetInt("limit")

			sc := tbl.Scan(scan)
			defer sc.Close()

			count := 0
			for limit <= 0 || count < limit {
				res, err := sc.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				printResult(res)
				count++
			}
			fmt.Printf("scanned %d rows\n", count)
			return nil
		},
	}
)

func init() {
	getCmd.Flags().String("columns", "", "Comma-separated family:qualifier projection")

	scanCmd.Flags().String("start", "", "Start row (inclusive, empty = table start)")
	scanCmd.Flags().String("stop", "", "Stop row (exclusive, empty = table end)")
	scanCmd.Flags().Uint32("batch", 0, "Rows per remote fetch (0 = server default)")
	scanCmd.Flags().String("columns", "", "Comma-separated family:qualifier projection")
	scanCmd.Flags().Int("limit", 0, "Stop after this many rows (0 = no limit)")
}
