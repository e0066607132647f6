package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/logging"
	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	"github.com/gemsales/voice-trainer/backend/internal/service/grading"
	"github.com/gemsales/voice-trainer/backend/internal/service/report"
	"github.com/gemsales/voice-trainer/backend/internal/service/session"
	"github.com/gemsales/voice-trainer/backend/internal/service/speech"
	"github.com/gemsales/voice-trainer/backend/internal/service/training"
)

var (
	personasFile string
	verbose      bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gradetester",
		Short:         "Grade sales training transcripts offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&personasFile, "personas", "", "persona catalog YAML (defaults to PERSONAS_FILE or the built-in catalog)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newPersonasCmd(), newGradeCmd())
	return root
}

func loadPersonas(cfg *config.Config) ([]persona.Persona, error) {
	path := personasFile
	if path == "" {
		path = cfg.Server.PersonasFile
	}
	return persona.LoadFile(path)
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return cfg, logging.New(level, "text"), nil
}

func newPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List the configured customer personas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			items, err := loadPersonas(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tSTONE\tDIFFICULTY\tVOICE")
			for _, p := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s\t%s\n", p.ID, p.Name, p.StoneEnglish, p.StoneHindi, p.Difficulty, p.Voice())
			}
			return tw.Flush()
		},
	}
}

type gradeOptions struct {
	persona    string
	transcript string
	audio      string
	duration   time.Duration
	outDir     string
	asJSON     bool
}

func newGradeCmd() *cobra.Command {
	var opts gradeOptions
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a transcript file and write the PDF report",
		Long: `Grade a transcript with the configured provider (GRADING_PROVIDER) and
render the report into --out.

The transcript file uses the same "SALES_REP: ..." / "CUSTOMER: ..." lines the
browser client submits. With --audio, the recording is transcribed first and
the file is only used when the transcription is too short.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrade(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.persona, "persona", "p", "", "persona key")
	cmd.Flags().StringVarP(&opts.transcript, "transcript", "t", "", "transcript text file")
	cmd.Flags().StringVarP(&opts.audio, "audio", "a", "", "optional recording of the sales rep")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "call duration, e.g. 4m30s")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "reports", "report output directory")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the grading result as JSON")
	_ = cmd.MarkFlagRequired("persona")

	return cmd
}

func runGrade(ctx context.Context, out io.Writer, opts gradeOptions) error {
	if opts.transcript == "" && opts.audio == "" {
		return fmt.Errorf("one of --transcript or --audio is required")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	items, err := loadPersonas(cfg)
	if err != nil {
		return err
	}
	personas := persona.NewMemoryStore(items)

	grader, err := grading.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	reports, err := report.NewRenderer(opts.outDir, logger)
	if err != nil {
		return err
	}

	var fallback string
	if opts.transcript != "" {
		data, err := os.ReadFile(opts.transcript)
		if err != nil {
			return err
		}
		fallback = string(data)
	}

	in := training.GradeInput{
		PersonaKey: opts.persona,
		Duration:   opts.duration,
		Fallback:   fallback,
	}
	var transcriber speech.Transcriber
	if opts.audio != "" {
		f, err := os.Open(opts.audio)
		if err != nil {
			return err
		}
		defer f.Close()
		in.Audio = f
		in.AudioFilename = filepath.Base(opts.audio)
		transcriber = speech.NewService(cfg.OpenAI, logger)
	}

	sessions := session.NewStore(personas)
	svc := training.NewService(training.Deps{
		Personas:    personas,
		Sessions:    sessions,
		Transcriber: transcriber,
		Grader:      grader,
		Reports:     reports,
		Logger:      logger,
	})

	sess, err := sessions.Create(ctx, opts.persona)
	if err != nil {
		return fmt.Errorf("persona %q: %w", opts.persona, err)
	}
	in.SessionID = sess.ID

	outcome, err := svc.GradeSession(ctx, in)
	if err != nil {
		return err
	}
	if outcome.ReportErr != nil {
		return outcome.ReportErr
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Result)
	}

	res := outcome.Result
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Overall\t%d/100\n", res.OverallScore)
	fmt.Fprintf(tw, "Lead status\t%s\n", res.LeadStatus)
	for _, c := range res.Scores.Categories() {
		fmt.Fprintf(tw, "%s (%d%%)\t%d\n", c.Label, c.Weight, c.Score)
	}
	fmt.Fprintf(tw, "Weighted\t%d\n", res.Scores.Weighted())
	fmt.Fprintf(tw, "Transcript\t%s\n", outcome.Session.TranscriptSource)
	fmt.Fprintf(tw, "Report\t%s\n", outcome.ReportPath)
	return tw.Flush()
}
