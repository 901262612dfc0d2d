package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sechaba/ragwatch/internal/retriever"
)

// Generator produces a model response for a fully assembled prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Config tunes a chat session
type Config struct {
	// TopK contexts retrieved per question (default: retriever.DefaultTopK)
	TopK int
}

// Session is an interactive question loop grounded in retrieved documents.
// Each question is embedded, matched against the index, and answered with
// the matching chunks prepended to the prompt.
type Session struct {
	retriever *retriever.Retriever
	generator Generator
	config    Config
	logger    *log.Logger
}

// NewSession creates a chat session over a retriever and a generator
func NewSession(r *retriever.Retriever, g Generator, cfg Config, logger *log.Logger) *Session {
	if cfg.TopK <= 0 {
		cfg.TopK = retriever.DefaultTopK
	}
	return &Session{retriever: r, generator: g, config: cfg, logger: logger}
}

// Run reads questions from in and writes answers to out until EOF or an
// exit command. Per-question failures are reported to the user and the loop
// continues; only I/O errors end the session.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Chat ready. Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if isExit(query) {
			break
		}

		answer, stale, err := s.Ask(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, answer)
		if len(stale) > 0 {
			fmt.Fprintf(out, "\n(note: possibly out of date: %s)\n", strings.Join(stale, ", "))
		}
	}
	return scanner.Err()
}

// Ask answers a single question. It returns the model's answer and the
// source paths whose index entries were stale at retrieval time.
func (s *Session) Ask(ctx context.Context, query string) (string, []string, error) {
	resp, err := s.retriever.Search(ctx, retriever.SearchRequest{
		Query:    query,
		TopK:     s.config.TopK,
		UseCache: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("retrieval failed: %w", err)
	}

	prompt := BuildPrompt(query, resp.Results)
	s.logger.Debug("generating answer", "contexts", len(resp.Results))

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("generation failed: %w", err)
	}
	return answer, stalePaths(resp.Results), nil
}

// BuildPrompt assembles the grounded prompt. With no retrieved contexts the
// raw query goes to the model untouched.
func BuildPrompt(query string, contexts []retriever.SearchResult) string {
	if len(contexts) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("You are an assistant answering questions about the user's document collection. Provide focused, practical answers.\n\n")
	b.WriteString("CONTEXT:\n")
	for _, c := range contexts {
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("QUERY: ")
	b.WriteString(query)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- Use the context above as your primary source\n")
	b.WriteString("- Focus on technical accuracy and practical application\n")
	b.WriteString("- Include relevant formulas, algorithms, or code snippets when applicable\n")
	b.WriteString("- Avoid generic conclusions; be specific and actionable\n")
	b.WriteString("- If you don't know the answer, say \"I don't know\" instead of guessing\n")
	return b.String()
}

func stalePaths(results []retriever.SearchResult) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, r := range results {
		if !r.Stale {
			continue
		}
		if _, ok := seen[r.SourcePath]; ok {
			continue
		}
		seen[r.SourcePath] = struct{}{}
		paths = append(paths, r.SourcePath)
	}
	return paths
}

func isExit(query string) bool {
	switch strings.ToLower(query) {
	case "exit", "quit":
		return true
	}
	return false
}
