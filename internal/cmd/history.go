package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomsim/loom/history"
)

var (
	historyLimit  int
	historyStatus string
)

var historyCmd = &cobra.Command{
	Use:   "history <database-file>",
	Short: "List runs recorded in a loom run-history database.",
	Args:  cobra.ExactArgs(1),
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list, newest first")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only list runs with this status (completed, deadlock, error)")
}

func runHistory(_ *cobra.Command, args []string) {
	reader, err := history.OpenReader(args[0])
	if err != nil {
		log.Fatalf("history: %v", err)
	}
	defer reader.Close()

	runs, err := reader.ListRuns(history.Query{Status: historyStatus, Limit: historyLimit})
	if err != nil {
		log.Fatalf("history: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tSTARTED\tWALL CLOCK\tFINAL TIME\tSTATUS\tDEADLOCKED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.3fs\t%v\t%s\t%v\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.WallClockSeconds,
			r.FinalVirtualTime, r.Status, r.DeadlockedActors)
	}
}
