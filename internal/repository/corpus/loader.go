// Package corpus reads the embedded catalog produced by the upstream vectorizer.
package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
)

// Loader builds an immutable corpus from a JSON array or JSON Lines document.
type Loader struct {
	expectedDimensions int
	logger             *zap.Logger
}

// NewLoader creates a loader. expectedDimensions > 0 requires every embedding to
// have exactly that length; 0 accepts whatever length the first record has.
func NewLoader(expectedDimensions int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{expectedDimensions: expectedDimensions, logger: logger}
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*catalog.Corpus, error) {
	f, err := os.Open(path) //nolint:gosec // corpus path comes from operator config
	if err != nil {
		return nil, domain.NewLoadError(path, -1, err)
	}
	defer func() { _ = f.Close() }()
	return l.Load(ctx, f, path)
}

// Load reads every record from r. source names the input in errors.
// Any failure rejects the whole corpus.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string) (*catalog.Corpus, error) {
	start := time.Now()

	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		l.logger.Warn("corpus source is empty", zap.String("source", source))
		return catalog.NewBuilder(0).Freeze(), nil
	}
	if err != nil {
		return nil, domain.NewLoadError(source, -1, err)
	}

	b := catalog.NewBuilder(0)
	if l.expectedDimensions > 0 {
		b.ExpectDimensions(l.expectedDimensions)
	}

	dec := json.NewDecoder(br)
	add := func(rec record) error {
		if err := ctx.Err(); err != nil {
			return domain.NewLoadError(source, -1, err)
		}
		idx := b.Len()
		attrs, err := rec.attributes()
		if err != nil {
			return domain.NewLoadError(source, idx, err)
		}
		vec, err := rec.embedding()
		if err != nil {
			return domain.NewLoadError(source, idx, err)
		}
		if err := b.Add(attrs, vec); err != nil {
			return domain.NewLoadError(source, idx, err)
		}
		return nil
	}

	format := "jsonl"
	if first == '[' {
		format = "json"
		err = readArray(dec, add)
	} else {
		err = readLines(dec, add)
	}
	if err != nil {
		var le *domain.LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, domain.NewLoadError(source, b.Len(), err)
	}

	c := b.Freeze()
	l.logger.Info("corpus loaded",
		zap.String("source", source),
		zap.String("format", format),
		zap.Int("items", c.Len()),
		zap.Int("dimensions", c.Dimensions()),
		zap.String("version", c.Version()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err //nolint:wrapcheck // io.EOF is checked by the caller
		}
		if !unicode.IsSpace(rune(c)) && c != 0xEF && c != 0xBB && c != 0xBF {
			if err := br.UnreadByte(); err != nil {
				return 0, fmt.Errorf("unread: %w", err)
			}
			return c, nil
		}
	}
}

func readArray(dec *json.Decoder, add func(record) error) error {
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read array start: %w", err)
	}
	for dec.More() {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if err := add(rec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read array end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after array")
	}
	return nil
}

func readLines(dec *json.Decoder, add func(record) error) error {
	for {
		var rec record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if err := add(rec); err != nil {
			return err
		}
	}
}
