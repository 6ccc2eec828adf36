package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelcam/internal/history"
)

type historyView struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Handle       string    `json:"handle"`
	Format       string    `json:"format"`
	DetectedType string    `json:"detected_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	Camera       string    `json:"camera"`
	Quality      string    `json:"quality"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMS   int64     `json:"duration_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History disabled")
				return nil
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d recording(s)\n", removed)
				return nil
			}

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				views := make([]historyView, 0, len(entries))
				for _, entry := range entries {
					views = append(views, historyView{
						ID:           entry.ID,
						SessionID:    entry.SessionID,
						Handle:       entry.Handle,
						Format:       entry.Format,
						DetectedType: entry.DetectedType,
						SizeBytes:    entry.SizeBytes,
						Camera:       entry.Camera,
						Quality:      entry.Quality,
						StartedAt:    entry.StartedAt,
						EndedAt:      entry.EndedAt,
						DurationMS:   entry.Duration.Milliseconds(),
					})
				}
				return writeJSON(cmd, views)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No recordings")
				return nil
			}

			fmt.Fprintln(out, renderHistoryTable(entries))

			summary, err := store.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Summary: %d recording(s), %s total, %s\n",
				summary.Recordings, formatDuration(summary.TotalDuration), formatBytes(summary.TotalBytes))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of recordings to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every history entry")
	return cmd
}

func renderHistoryTable(entries []history.Entry) string {
	headers := []string{"ID", "Started", "Duration", "Size", "Camera", "Quality", "Format", "Handle"}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			relativeTime(entry.StartedAt),
			formatDuration(entry.Duration),
			formatBytes(entry.SizeBytes),
			valueOrDash(entry.Camera),
			valueOrDash(entry.Quality),
			valueOrDash(entry.Format),
			entry.Handle,
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}
