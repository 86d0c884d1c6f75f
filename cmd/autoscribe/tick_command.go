package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/autoscribe/internal/scheduler"
)

func newTickCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Process due schedules once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				report, err := a.runner.Tick(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				printTickReport(cmd, report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printTickReport(cmd *cobra.Command, report *scheduler.TickReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d due, %d succeeded, %d failed, %d deferred (%s)\n",
		report.RunID, report.Due, report.Succeeded, report.Failed, report.Deferred, report.Duration.Round(time.Millisecond))
	if len(report.Outcomes) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		post := ""
		if o.ArticleID != 0 {
			post = strconv.FormatInt(o.ArticleID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ScheduleID, 10),
			o.Topic,
			o.Outcome,
			post,
			string(o.Status),
			o.Error,
		})
	}
	printTable(cmd,
		[]string{"Schedule", "Topic", "Outcome", "Post", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
