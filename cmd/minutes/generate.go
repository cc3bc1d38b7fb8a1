package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/pipeline"
	"github.com/sitzungslab/minutes/poller"
	"github.com/sitzungslab/minutes/session"
	"github.com/sitzungslab/minutes/telemetry"
	"github.com/sitzungslab/minutes/transcription"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		audioFile      string
		transcriptFile string
		topsPDF        string
		topTitles      []string
		assigns        []string
		speakers       []string
		jobID          string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate per-topic meeting minutes from a transcript",
		Long: `Reads a "[SPEAKER_NN]: text" transcript (as produced by the
transcribe command), assigns line ranges to agenda items and asks the
backend for one summary per item. Agenda items come from repeated
--top flags or from an invitation PDF via --tops-pdf.

Line ranges are 1-based and inclusive, addressed by topic position:

  minutes generate -t sitzung.txt \
      --top "Genehmigung der Niederschrift" \
      --top "Haushalt 2026" \
      --assign 1-12:1 --assign 13-80:2 \
      --speaker SPEAKER_00="OB Müller" \
      -o niederschrift.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var lines []api.TranscriptLine
			switch {
			case audioFile != "":
				var err error
				lines, jobID, err = transcribeAudio(cmd, a, audioFile)
				if err != nil {
					return err
				}
			case transcriptFile != "":
				var err error
				lines, err = transcription.ParseTranscriptFile(transcriptFile)
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
			default:
				return fmt.Errorf("pass --audio or --transcript")
			}
			if len(lines) == 0 {
				return fmt.Errorf("no transcript lines to summarize")
			}

			titles := topTitles
			if topsPDF != "" {
				f, err := os.Open(topsPDF)
				if err != nil {
					return err
				}
				extracted, err := a.client.ExtractTOPs(ctx, filepath.Base(topsPDF), f, a.cfg.LLM)
				f.Close()
				if err != nil {
					return fmt.Errorf("extract TOPs: %w", err)
				}
				titles = append(titles, extracted...)
			}
			if len(titles) == 0 {
				return fmt.Errorf("no agenda items: pass --top or --tops-pdf")
			}

			sess := session.New()
			sess.SetTranscript(lines)
			if jobID != "" {
				sess.SetJob(jobID)
			}

			topics := make([]session.Topic, 0, len(titles))
			for _, title := range titles {
				topics = append(topics, sess.AddTopic(title))
			}

			if err := applySpeakers(sess, speakers); err != nil {
				return err
			}
			if err := applyAssignments(sess, topics, assigns, len(lines)); err != nil {
				return err
			}

			reporter := telemetry.NewReporter(a.client, a.log)
			pipe := pipeline.New(a.client, reporter, a.log)

			fmt.Fprintf(cmd.ErrOrStderr(), "Erstelle Zusammenfassungen für %d Tagesordnungspunkte...\n", len(topics))
			total, err := pipe.RunAll(ctx, sess, a.cfg.LLM)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Fertig in %.1fs\n", total)

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			writeProtocol(out, sess, topics)

			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Niederschrift gespeichert: %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&audioFile, "audio", "a", "", "recording to transcribe first (MP3, WAV, M4A)")
	cmd.Flags().StringVarP(&transcriptFile, "transcript", "t", "", "existing transcript file")
	cmd.Flags().StringVar(&topsPDF, "tops-pdf", "", "invitation PDF to extract agenda items from")
	cmd.Flags().StringArrayVar(&topTitles, "top", nil, "agenda item title (repeatable)")
	cmd.Flags().StringArrayVar(&assigns, "assign", nil, "line range to topic, e.g. 1-12:1 (repeatable)")
	cmd.Flags().StringArrayVar(&speakers, "speaker", nil, "speaker display name, e.g. SPEAKER_00=Müller (repeatable)")
	cmd.Flags().StringVar(&jobID, "job", "", "transcription job id for the completion report")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the minutes to a file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("audio", "transcript")
	cmd.MarkFlagsOneRequired("audio", "transcript")

	return cmd
}

// transcribeAudio uploads a recording and waits for its transcript.
// The returned job id feeds the session-complete report.
func transcribeAudio(cmd *cobra.Command, a *app, audioPath string) ([]api.TranscriptLine, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	p := poller.New(a.client, a.cfg.Poller, a.log)
	job, err := p.Submit(cmd.Context(), filepath.Base(audioPath), contentTypeFor(audioPath), f)
	if err != nil {
		return nil, "", fmt.Errorf("upload: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Job %s gestartet\n", job.JobID)

	done, err := p.PollUntilTerminal(cmd.Context(), job.JobID, func(progress int, message string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", progress, message)
	})
	if err != nil {
		return nil, "", err
	}
	return done.Transcript, done.JobID, nil
}

// applySpeakers records RAW=Name mappings on the session.
func applySpeakers(sess *session.Session, specs []string) error {
	for _, spec := range specs {
		raw, name, ok := strings.Cut(spec, "=")
		if !ok || raw == "" || name == "" {
			return fmt.Errorf("invalid --speaker %q, want RAW=Name", spec)
		}
		sess.SetSpeakerName(raw, name)
	}
	return nil
}

// applyAssignments maps 1-based inclusive line ranges to topics. With
// no explicit ranges and a single topic, every line goes to that topic.
func applyAssignments(sess *session.Session, topics []session.Topic, specs []string, lineCount int) error {
	if len(specs) == 0 {
		if len(topics) != 1 {
			return fmt.Errorf("multiple agenda items need explicit --assign ranges")
		}
		return sess.RangeAssign(0, lineCount-1, topics[0].ID)
	}

	for _, spec := range specs {
		rangePart, topicPart, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("invalid --assign %q, want FROM-TO:TOPIC", spec)
		}
		fromStr, toStr, ok := strings.Cut(rangePart, "-")
		if !ok {
			return fmt.Errorf("invalid --assign range %q, want FROM-TO", rangePart)
		}

		from, err := strconv.Atoi(fromStr)
		if err != nil || from < 1 {
			return fmt.Errorf("invalid --assign start %q", fromStr)
		}
		to, err := strconv.Atoi(toStr)
		if err != nil || to < from {
			return fmt.Errorf("invalid --assign end %q", toStr)
		}
		if to > lineCount {
			return fmt.Errorf("--assign %q exceeds the %d transcript lines", spec, lineCount)
		}
		idx, err := strconv.Atoi(topicPart)
		if err != nil || idx < 1 || idx > len(topics) {
			return fmt.Errorf("invalid --assign topic %q, have %d items", topicPart, len(topics))
		}

		if err := sess.RangeAssign(from-1, to-1, topics[idx-1].ID); err != nil {
			return err
		}
	}
	return nil
}

// writeProtocol renders the finished minutes as Markdown, one section
// per agenda item in agenda order.
func writeProtocol(w io.Writer, sess *session.Session, topics []session.Topic) {
	fmt.Fprintln(w, "# Niederschrift")

	for i, topic := range topics {
		entry, ok := sess.Summaries.Get(topic.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n## TOP %d: %s\n\n%s\n", i+1, topic.Title, entry.Text)
	}
}
