package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"tubecast/internal/bootstrap"
	"tubecast/internal/model/run"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded pipeline runs",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	flags := historyCmd.Flags()
	flags.Int64("page", 1, "page number")
	flags.Int64("page-size", 20, "runs per page")
	flags.String("video", "", "filter by video id")
	flags.String("status", "", "filter by status (succeeded/failed)")
	flags.Bool("json", false, "print the runs as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	flags := cmd.Flags()

	filter := run.ListFilter{}
	filter.Page, _ = flags.GetInt64("page")
	filter.PageSize, _ = flags.GetInt64("page-size")
	filter.VideoID, _ = flags.GetString("video")
	status, _ := flags.GetString("status")
	filter.Status = run.Status(status)
	asJSON, _ := flags.GetBool("json")
	filter.Normalize()

	ctx := cmd.Context()
	app, err := bootstrap.OpenHistory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer app.Close()

	runs, total, err := app.History.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON || !isTerminal(out) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"runs": runs, "total": total})
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Created", "Run", "Video", "Output", "Status", "Stage", "Duration", "Artifact"})
	for _, r := range runs {
		status := text.FgGreen.Sprint(r.Status)
		if r.Status == run.StatusFailed {
			status = text.FgRed.Sprint(string(r.Status) + " (" + r.FailureKind + ")")
		}
		t.AppendRow(table.Row{
			r.CreatedAt.Local().Format(time.DateTime),
			r.ID,
			r.VideoID,
			r.Output,
			status,
			r.Stage,
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.ArtifactFilename,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", fmt.Sprintf("%d (page %d)", total, filter.Page)})
	t.Render()
	return nil
}
