package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/report"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and maintain generation logs",
	}

	cmd.AddCommand(newLogsListCommand(ctx))
	cmd.AddCommand(newLogsStatsCommand(ctx))
	cmd.AddCommand(newLogsExportCommand(ctx))
	cmd.AddCommand(newLogsPurgeCommand(ctx))

	return cmd
}

func newLogsListCommand(ctx *commandContext) *cobra.Command {
	var page, perPage int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generation log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				result, err := a.store.ListLogs(cmd.Context(), page, perPage)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printLogPage(cmd, result)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Entries per page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printLogPage(cmd *cobra.Command, page *models.LogPage) {
	if len(page.Logs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No log entries")
		return
	}

	rows := make([][]string, 0, len(page.Logs))
	for _, l := range page.Logs {
		post := "-"
		if l.PostID != nil {
			post = strconv.FormatInt(*l.PostID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			l.Status,
			l.Model,
			humanize.Comma(int64(l.TokensUsed)),
			fmt.Sprintf("$%.4f", l.Cost),
			post,
			l.Error,
		})
	}
	printTable(cmd,
		[]string{"ID", "Created", "Status", "Model", "Tokens", "Cost", "Post", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)

	pages := (page.Total + page.PerPage - 1) / page.PerPage
	fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%s entries)\n", page.Page, max(pages, 1), humanize.Comma(int64(page.Total)))
}

func newLogsStatsCommand(ctx *commandContext) *cobra.Command {
	var days int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize generation usage over a trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > 365 {
				return fmt.Errorf("--days must be between 1 and 365")
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				stats, err := a.store.LogStats(cmd.Context(), time.Now().AddDate(0, 0, -days), days)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				printTable(cmd, []string{"Metric", "Value"}, [][]string{
					{"Window", fmt.Sprintf("%d days", stats.Days)},
					{"Generations", humanize.Comma(int64(stats.TotalGenerations))},
					{"Failed", humanize.Comma(int64(stats.FailedGenerations))},
					{"Tokens", humanize.Comma(int64(stats.TotalTokens))},
					{"Average tokens", humanize.Comma(int64(stats.AverageTokens))},
					{"Cost", fmt.Sprintf("$%.4f", stats.TotalCost)},
					{"Most used model", stats.MostPopularModel},
				}, []columnAlignment{alignLeft, alignRight})
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Window length in days")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newLogsExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all generation logs as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				logs, err := a.store.ExportLogs(cmd.Context())
				if err != nil {
					return err
				}
				if len(logs) == 0 {
					return fmt.Errorf("no logs to export")
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer f.Close()
					w = f
				}
				if err := report.WriteLogsCSV(w, logs); err != nil {
					return err
				}
				if output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d log entries to %s\n", len(logs), output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newLogsPurgeCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete log entries older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				days := a.cfg.Logs.RetentionDays
				if cmd.Flags().Changed("older-than-days") {
					if olderThanDays < 1 || olderThanDays > 365 {
						return fmt.Errorf("--older-than-days must be between 1 and 365")
					}
					days = olderThanDays
				}
				n, err := a.store.PurgeLogsBefore(cmd.Context(), time.Now().AddDate(0, 0, -days))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d log entries older than %d days\n", n, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Override the configured retention period")
	return cmd
}
