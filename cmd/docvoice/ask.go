package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/llm"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/speech"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type askOptions struct {
	files    []string
	question string
	audioOut string
	asJSON   bool
	verbose  bool
}

// pipelineFactory builds the pipeline once flags are parsed. Tests swap it
// for one backed by fakes.
type pipelineFactory func(ctx context.Context, log *slog.Logger) (*pipeline.Pipeline, error)

func newAskCmd(build pipelineFactory) *cobra.Command {
	if build == nil {
		build = configuredPipeline
	}
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a question about one or more documents",
		Example: `  docvoice ask -f report.pdf -q "What was Q3 revenue?"
  docvoice ask -f a.pdf -f notes.docx -q "Summarize" --audio-out answer.mp3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			pipe, err := build(cmd.Context(), log)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), pipe, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.files, "file", "f", nil, "document to read (repeatable)")
	f.StringVarP(&opts.question, "question", "q", "", "question to ask")
	f.StringVarP(&opts.audioOut, "audio-out", "o", "", "write the spoken answer (MP3) to this path")
	f.BoolVar(&opts.asJSON, "json", false, "print the API response body instead of plain text")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages to stderr")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

func configuredPipeline(ctx context.Context, log *slog.Logger) (*pipeline.Pipeline, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	completer, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(parser.NewExtractor(cfg.PDFFallbackPdftotext), completer, speech.New(cfg), log), nil
}

func runAsk(ctx context.Context, stdout, stderr io.Writer, pipe *pipeline.Pipeline, opts *askOptions) error {
	docs := make([]pipeline.Document, 0, len(opts.files))
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(path), Data: data})
	}

	res, err := pipe.HandleQuery(ctx, docs, opts.question)
	if err != nil {
		return err
	}

	if opts.audioOut != "" && res.Audio != nil {
		if err := os.WriteFile(opts.audioOut, res.Audio, 0o644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(stdout, res.Answer)
	if res.SynthesisErr != nil {
		color.New(color.FgYellow).Fprintln(stderr, "warning: no audio:", res.SynthesisErr)
	} else if opts.audioOut != "" {
		fmt.Fprintf(stderr, "audio written to %s (%d bytes)\n", opts.audioOut, len(res.Audio))
	}
	return nil
}
