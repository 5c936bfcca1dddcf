// Package pipeline answers a question about a set of uploaded documents and
// speaks the answer: extract, complete, synthesize.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/docvoice/internal/llm"
	"github.com/go-chi/chi/v5/middleware"
)

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// Extractor returns the plain text of one document. An empty string means
// the document has no extractable text.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Completer generates an answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, p llm.Prompt) (string, error)
}

// Synthesizer converts text to encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Pipeline holds the three collaborators. It keeps no per-request state and
// is safe for concurrent use when they are.
type Pipeline struct {
	extractor   Extractor
	completer   Completer
	synthesizer Synthesizer
	log         *slog.Logger
}

func New(extractor Extractor, completer Completer, synthesizer Synthesizer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		extractor:   extractor,
		completer:   completer,
		synthesizer: synthesizer,
		log:         log,
	}
}

// HandleQuery runs one request. The returned error is always one of
// *MissingInputError, ErrNoContent or *CompletionError; a synthesis failure
// is reported through QueryResult.SynthesisErr instead.
func (p *Pipeline) HandleQuery(ctx context.Context, docs []Document, question string) (*QueryResult, error) {
	log := p.log.With("request_id", middleware.GetReqID(ctx), "documents", len(docs))

	if len(docs) == 0 {
		return nil, &MissingInputError{Field: "documents", Message: "no documents supplied"}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &MissingInputError{Field: "query", Message: "no query provided"}
	}
	log.Info("query received")

	text := p.extractAll(ctx, docs, log)
	if strings.TrimSpace(text) == "" {
		log.Warn("no extractable text")
		return nil, ErrNoContent
	}
	log.Info("text extracted", "chars", utf8.RuneCountInString(text))

	prompt := BuildPrompt(text, question)

	start := time.Now()
	answer, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		log.Error("completion failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, &CompletionError{Err: err}
	}
	answer = strings.TrimSpace(answer)
	log.Info("completion done", "answer_chars", utf8.RuneCountInString(answer), "duration_ms", time.Since(start).Milliseconds())

	result := &QueryResult{Answer: answer}

	start = time.Now()
	audio, err := p.synthesizer.Synthesize(ctx, answer)
	if err != nil {
		log.Warn("synthesis failed, returning text only", "error", err, "duration_ms", time.Since(start).Milliseconds())
		result.SynthesisErr = &SynthesisError{Err: err}
		return result, nil
	}
	if audio == nil {
		audio = []byte{}
	}
	result.Audio = audio
	log.Info("synthesis done", "audio_bytes", len(audio), "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// extractAll concatenates document text in upload order. Documents that fail
// to parse or carry no text are skipped.
func (p *Pipeline) extractAll(ctx context.Context, docs []Document, log *slog.Logger) string {
	var sb strings.Builder
	for i, doc := range docs {
		text, err := p.extractor.Extract(ctx, doc.Name, doc.Data)
		if err != nil {
			log.Warn("skipping unreadable document", "index", i, "filename", doc.Name, "error", err)
			continue
		}
		if text == "" {
			log.Info("document has no text", "index", i, "filename", doc.Name)
			continue
		}
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
