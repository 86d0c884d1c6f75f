// Package report renders generation logs for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hoanghai1803/autoscribe/internal/models"
)

// CSVHeader is the first row of every log export.
var CSVHeader = []string{"ID", "Post ID", "Post Title", "Model", "Tokens Used", "Cost", "Status", "Created At"}

const notAvailable = "N/A"

// WriteLogsCSV writes logs as CSV with a header row. Entries without an
// article show N/A for the post ID and title.
func WriteLogsCSV(w io.Writer, logs []models.GenerationLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, l := range logs {
		postID, title := notAvailable, notAvailable
		if l.PostID != nil {
			postID = strconv.FormatInt(*l.PostID, 10)
			title = l.PostTitle
		}
		record := []string{
			strconv.FormatInt(l.ID, 10),
			postID,
			title,
			l.Model,
			strconv.Itoa(l.TokensUsed),
			strconv.FormatFloat(l.Cost, 'f', -1, 64),
			l.Status,
			l.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", l.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename is the download name for an export taken on day.
func ExportFilename(day string) string {
	return "autoscribe-logs-" + day + ".csv"
}
