package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/feeds"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		file       string
		pageURL    string
		title      string
		keyword    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score HTML content for readability, SEO and AI-overview compliance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (pageURL == "") {
				return fmt.Errorf("exactly one of --file or --url is required")
			}

			cfg, err := ctx.ensureConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a := analyzer.New(analyzer.Options{SiteURL: cfg.Generation.SiteURL})

			var content string
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				content = string(data)
			} else {
				article, err := feeds.NewFetcher().ExtractArticle(cmd.Context(), pageURL)
				if err != nil {
					return err
				}
				content = article.Content
				if title == "" {
					title = article.Title
				}
			}

			result := a.Analyze(content, title, keyword)
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printAnalysis(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "HTML file to analyze")
	cmd.Flags().StringVar(&pageURL, "url", "", "Published page to fetch and analyze")
	cmd.Flags().StringVar(&title, "title", "", "Article title (defaults to the page title with --url)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Focus keyword")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printAnalysis(cmd *cobra.Command, r analyzer.Result) {
	out := cmd.OutOrStdout()
	printTable(cmd, []string{"Score", "Value"}, [][]string{
		{"Overall", strconv.Itoa(r.OverallScore)},
		{"Readability", fmt.Sprintf("%.1f (%s)", r.Readability.Score, r.Readability.Level)},
		{"SEO", strconv.Itoa(r.SEO.Score)},
		{"AI overview compliance", strconv.Itoa(r.AIO.OverallScore)},
		{"Words", strconv.Itoa(r.Readability.Words)},
		{"Reading time", fmt.Sprintf("%d min", r.ReadingTime)},
		{"Keyword density", fmt.Sprintf("%.2f%%", r.Keyword.Density)},
	}, []columnAlignment{alignLeft, alignRight})

	var suggestions []string
	for _, c := range r.AIO.Categories() {
		suggestions = append(suggestions, c.Suggestions...)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(out, "Suggestions:")
		for _, s := range suggestions {
			fmt.Fprintf(out, "  - %s\n", strings.TrimSpace(s))
		}
	}
}
