package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/poller"
)

func newTranscribeCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Upload a recording and wait for the diarized transcript",
		Long: `Uploads an MP3, WAV or M4A recording to the backend, follows the
transcription job until it finishes and writes the transcript as
"[SPEAKER_NN]: text" lines. The output can be fed back into the
generate command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath := args[0]
			f, err := os.Open(audioPath)
			if err != nil {
				return err
			}
			defer f.Close()

			p := poller.New(a.client, a.cfg.Poller, a.log)

			job, err := p.Submit(cmd.Context(), filepath.Base(audioPath), contentTypeFor(audioPath), f)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Job %s gestartet\n", job.JobID)

			done, err := p.PollUntilTerminal(cmd.Context(), job.JobID, func(progress int, message string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", progress, message)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			writeTranscript(out, done.Transcript)

			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Transkript gespeichert: %s (%d Zeilen)\n", output, len(done.Transcript))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the transcript to a file instead of stdout")
	return cmd
}

// writeTranscript prints lines in the "[SPEAKER_NN]: text" exchange
// format that the generate command reads back.
func writeTranscript(w io.Writer, lines []api.TranscriptLine) {
	for _, line := range lines {
		fmt.Fprintf(w, "[%s]: %s\n", line.Speaker, line.Text)
	}
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}
