package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tubecast/internal/bootstrap"
	model "tubecast/internal/model/pipeline"
	"tubecast/internal/pkg/podcasttools"
	pipelinesvc "tubecast/internal/service/pipeline"
)

// errRunFailed 运行失败，详情已输出
var errRunFailed = errors.New("run failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once for a YouTube URL",
	Long: `Fetch the transcript of a YouTube video and produce either a summary
or a two-host podcast MP3 in the configured output directory.`,
	Example: `  tubecast run --url https://youtu.be/dQw4w9WgXcQ
  tubecast run --url https://youtu.be/dQw4w9WgXcQ --output podcast --voice male`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringP("url", "u", "", "YouTube video URL (required)")
	flags.StringP("output", "o", "summary", "output type (summary/podcast)")
	flags.String("voice", "", "podcast voice (male/female/mixed), default from pipeline.default_voice")
	flags.String("output-dir", "", "directory for generated artifacts")
	flags.Bool("json", false, "print the result as JSON")
	_ = runCmd.MarkFlagRequired("url")

	_ = viper.BindPFlag("pipeline.output_dir", flags.Lookup("output-dir"))
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.ValidatePipeline(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	flags := cmd.Flags()
	url, _ := flags.GetString("url")
	outputFlag, _ := flags.GetString("output")
	voiceFlag, _ := flags.GetString("voice")
	asJSON, _ := flags.GetBool("json")

	output, err := model.ParseOutputType(outputFlag)
	if err != nil {
		return err
	}
	var voice podcasttools.Voice
	if voiceFlag != "" {
		if voice, err = podcasttools.ParseVoice(voiceFlag); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init pipeline: %w", err)
	}
	defer app.Close()

	st := app.Pipeline.Run(ctx, pipelinesvc.Request{URL: url, Output: output, Voice: voice})

	out := cmd.OutOrStdout()
	if asJSON || !isTerminal(out) {
		err = printStateJSON(out, st)
	} else {
		printStateTable(out, st)
	}
	if err != nil {
		return err
	}
	if !st.Succeeded() {
		return fmt.Errorf("%w: %s", errRunFailed, st.FailureKind)
	}
	return nil
}

// isTerminal 输出是否为终端，管道或重定向时改用 JSON
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printStateJSON(w io.Writer, st *model.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func printStateTable(w io.Writer, st *model.State) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run " + st.RunID)

	t.AppendRow(table.Row{"Video", st.VideoID})
	t.AppendRow(table.Row{"Output", st.Output})
	if st.Output == model.OutputPodcast {
		t.AppendRow(table.Row{"Voice", st.Voice})
	}
	t.AppendRow(table.Row{"Stage", st.Stage})
	t.AppendRow(table.Row{"Duration", st.Duration().Round(time.Millisecond)})
	if st.Title != "" {
		t.AppendRow(table.Row{"Title", st.Title})
	}
	if st.Hosts[0] != "" {
		t.AppendRow(table.Row{"Hosts", st.Hosts[0] + " & " + st.Hosts[1]})
	}
	if st.AudioPath != "" {
		t.AppendRow(table.Row{"Audio", st.AudioPath})
	}
	if st.AudioSeconds > 0 {
		t.AppendRow(table.Row{"Length", time.Duration(st.AudioSeconds * float64(time.Second)).Round(time.Second)})
	}
	if st.TextPath != "" {
		t.AppendRow(table.Row{"Text", st.TextPath})
	}
	if st.ArtifactURL != "" {
		t.AppendRow(table.Row{"URL", st.ArtifactURL})
	}
	if st.FailureKind != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Failure", st.FailureKind})
		t.AppendRow(table.Row{"Reason", st.FailureReason})
	}
	t.Render()

	if st.Succeeded() && st.Output == model.OutputSummary {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.GeneratedText)
	}
}
