// Package session runs the interactive recommendation menu on a terminal.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/display"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
)

// Recommender answers the menu queries.
type Recommender interface {
	RankByText(ctx context.Context, query string, topK int) ([]result.Entry, error)
	FilterByAttributes(ctx context.Context, spec filter.Spec, topK int) ([]result.Entry, error)
	BasicRecommendations(ctx context.Context, topK int) ([]result.Entry, error)
}

const menu = `
--- RECOMMENDATION MENU ---
1. General recommendations
2. Search by filters
3. Search by description
4. Quit
`

// filterPrompts are asked in order; the key names the filter field.
var filterPrompts = []struct {
	key    string
	prompt string
}{
	{"brand", "Brand (Enter to skip): "},
	{"price_min", "Minimum price (Enter to skip): "},
	{"price_max", "Maximum price (Enter to skip): "},
	{"size_min", "Minimum inches (Enter to skip): "},
	{"size_max", "Maximum inches (Enter to skip): "},
}

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// Session is a single interactive menu loop over one input and output.
type Session struct {
	recommend Recommender
	in        *bufio.Scanner
	out       io.Writer
	topK      int
	logger    *zap.Logger
}

// New creates a Session reading answers from in and writing to out.
func New(recommend Recommender, in io.Reader, out io.Writer, topK int, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		recommend: recommend,
		in:        bufio.NewScanner(in),
		out:       out,
		topK:      topK,
		logger:    logger,
	}
}

// Run shows the menu until the user quits, the input ends or ctx is done.
// Query failures are printed and the loop continues; only I/O errors are returned.
func (s *Session) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.print(menu); err != nil {
			return err
		}
		option, ok := s.ask("Select an option: ")
		if !ok {
			return s.inputEnded(ctx)
		}

		err := s.dispatch(ctx, option)
		switch {
		case errors.Is(err, errQuit):
			return s.print("Exiting.\n")
		case errors.Is(err, io.EOF):
			return s.inputEnded(ctx)
		case err != nil:
			return err
		}
	}
}

// inputEnded reports why reading stopped. A closed input after cancellation is a clean exit.
func (s *Session) inputEnded(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, option string) error {
	switch option {
	case "1":
		entries, err := s.recommend.BasicRecommendations(ctx, s.topK)
		return s.show(entries, err)
	case "2":
		values := make(map[string]string, len(filterPrompts))
		for _, p := range filterPrompts {
			answer, ok := s.ask(p.prompt)
			if !ok {
				return io.EOF
			}
			values[p.key] = answer
		}
		entries, err := s.recommend.FilterByAttributes(ctx, filter.ParseSpec(values), s.topK)
		return s.show(entries, err)
	case "3":
		query, ok := s.ask("Describe what you are looking for: ")
		if !ok {
			return io.EOF
		}
		entries, err := s.recommend.RankByText(ctx, query, s.topK)
		return s.show(entries, err)
	case "4":
		return errQuit
	default:
		return s.print("Invalid option. Try again.\n")
	}
}

// show renders a query outcome. A query error is reported to the user, not returned.
func (s *Session) show(entries []result.Entry, err error) error {
	if err != nil {
		s.logger.Warn("Query failed", zap.Error(err))
		return s.print(fmt.Sprintf("Error: %v\n", err))
	}
	return display.Render(s.out, display.Format(entries)) //nolint:wrapcheck // already prefixed by display
}

// ask prints a prompt and reads one trimmed line. ok is false when input ended.
func (s *Session) ask(prompt string) (string, bool) {
	if err := s.print(prompt); err != nil {
		return "", false
	}
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) print(text string) error {
	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
