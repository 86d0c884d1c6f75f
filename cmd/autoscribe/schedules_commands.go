package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/scheduler"
)

func newSchedulesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage generation schedules",
	}

	cmd.AddCommand(newSchedulesListCommand(ctx))
	cmd.AddCommand(newSchedulesAddCommand(ctx))
	cmd.AddCommand(newSchedulesIDCommand(ctx, "toggle", "Pause an active schedule or resume a paused one", toggleSchedule))
	cmd.AddCommand(newSchedulesIDCommand(ctx, "reset", "Reactivate a schedule and clear its failures", resetSchedule))
	cmd.AddCommand(newSchedulesIDCommand(ctx, "delete", "Delete a schedule", deleteSchedule))
	cmd.AddCommand(newSchedulesImportCommand(ctx))

	return cmd
}

func newSchedulesListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				schedules, err := a.manager.List(cmd.Context(), models.ScheduleStatus(status))
				if err != nil {
					return err
				}
				if jsonOutput {
					if schedules == nil {
						schedules = []models.Schedule{}
					}
					return writeJSON(cmd, schedules)
				}
				if len(schedules) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No schedules")
					return nil
				}
				printSchedules(cmd, schedules, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show schedules with this status (active, paused, failed)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printSchedules(cmd *cobra.Command, schedules []models.Schedule, now time.Time) {
	rows := make([][]string, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			strings.Join(s.Keywords, ", "),
			string(s.Frequency),
			string(s.Status),
			humanize.RelTime(s.NextRun, now, "ago", "from now"),
			strconv.Itoa(s.FailureCount),
		})
	}
	printTable(cmd,
		[]string{"ID", "Title", "Keywords", "Frequency", "Status", "Next Run", "Failures"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func newSchedulesAddCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		keywords    []string
		frequency   string
		start       string
		tone        string
		length      string
		language    string
		feedURL     string
		autoPublish bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := scheduler.AddRequest{
				Title:     title,
				Keywords:  keywords,
				Frequency: models.Frequency(strings.ToLower(frequency)),
				Settings:  map[string]any{},
			}
			for key, val := range map[string]string{"tone": tone, "length": length, "language": language, "feed_url": feedURL} {
				if val != "" {
					req.Settings[key] = val
				}
			}
			if autoPublish {
				req.Settings["auto_publish"] = true
			}
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q: use RFC 3339, e.g. 2025-07-01T09:00:00Z", start)
				}
				req.Start = &t
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				sch, err := a.manager.Add(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added schedule %d %q, first run %s\n",
					sch.ID, sch.Title, sch.NextRun.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Base topic for generated articles")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Comma-separated focus keywords")
	cmd.Flags().StringVar(&frequency, "frequency", "daily", "hourly, daily, weekly or monthly")
	cmd.Flags().StringVar(&start, "start", "", "First run time (RFC 3339); defaults to one period from now")
	cmd.Flags().StringVar(&tone, "tone", "", "Writing tone override")
	cmd.Flags().StringVar(&length, "length", "", "Article length override (short, medium, long)")
	cmd.Flags().StringVar(&language, "language", "", "Article language override")
	cmd.Flags().StringVar(&feedURL, "feed-url", "", "RSS/Atom feed (or scrape:// page) whose headlines inform each article")
	cmd.Flags().BoolVar(&autoPublish, "auto-publish", false, "Publish generated articles instead of saving drafts")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

type scheduleAction func(cmd *cobra.Command, a *app, id int64) error

func newSchedulesIDCommand(ctx *commandContext, use, short string, action scheduleAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid schedule id %q", args[0])
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				return action(cmd, a, id)
			})
		},
	}
}

func toggleSchedule(cmd *cobra.Command, a *app, id int64) error {
	status, err := a.manager.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d is now %s\n", id, status)
	return nil
}

func resetSchedule(cmd *cobra.Command, a *app, id int64) error {
	if err := a.manager.Reset(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d reset and active\n", id)
	return nil
}

func deleteSchedule(cmd *cobra.Command, a *app, id int64) error {
	if err := a.manager.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d deleted\n", id)
	return nil
}

func newSchedulesImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Add schedules from a YAML file",
		Long: `Add schedules from a YAML document of the form

  schedules:
    - title: Go tips
      keywords: [concurrency, testing]
      frequency: weekly
      settings:
        tone: casual

Every entry is validated before any is stored. Use - to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				added, err := a.manager.Import(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d schedules\n", len(added))
				return nil
			})
		},
	}
}
