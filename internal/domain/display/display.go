// Package display turns query hits into human-oriented records. The rules repair
// known data-quality issues of the scraped retailer listings.
package display

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/recodex/internal/domain/query/result"
)

// Placeholders for missing values.
const (
	NotAvailable = "N/A"
	NoURL        = "No disponible"
)

const (
	currencyPrefix = "$"
	groupSeparator = "."
	separatorLine  = "------------------------------------------------------------"
)

// Record is a display-ready hit.
type Record struct {
	Position   int      `json:"position"`
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Price      string   `json:"price_display"`
	Size       string   `json:"size"`
	URL        string   `json:"url_display"`
	Similarity string   `json:"similarity,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

// Format converts hits into display records, preserving order. Positions are 1-based.
func Format(entries []result.Entry) []Record {
	out := make([]Record, len(entries))
	for i, e := range entries {
		it := e.Item()
		rec := Record{
			Position: i + 1,
			Index:    it.Index(),
			Name:     it.Name(),
			Brand:    NotAvailable,
			Price:    NotAvailable,
			Size:     NotAvailable,
			URL:      NoURL,
		}
		if b, ok := it.Brand(); ok {
			rec.Brand = FormatBrand(b)
		}
		if p, ok := it.Price(); ok {
			rec.Price = FormatPrice(p)
		}
		if s, ok := it.SizeInches(); ok {
			rec.Size = FormatSize(s)
		}
		if u, ok := it.URL(); ok {
			rec.URL = RepairURL(u)
		}
		if score, ok := e.Score(); ok {
			rec.Similarity = FormatSimilarity(score)
			rec.Score = &score
		}
		out[i] = rec
	}
	return out
}

// FormatPrice truncates to an integer and groups thousands with dots: 1234567 -> "$1.234.567".
func FormatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return NotAvailable
	}
	// big.Int keeps truncation exact past the int64 range
	n, _ := big.NewFloat(math.Trunc(price)).Int(nil)
	sign := ""
	if n.Sign() < 0 {
		sign = "-"
		n.Neg(n)
	}
	digits := n.String()

	var b strings.Builder
	b.WriteString(currencyPrefix)
	b.WriteString(sign)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(groupSeparator)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatBrand upper-cases the first letter and lower-cases the rest: "SAMSUNG" -> "Samsung".
// A blank brand renders as N/A.
func FormatBrand(brand string) string {
	if strings.TrimSpace(brand) == "" {
		return NotAvailable
	}
	r, size := utf8.DecodeRuneInString(brand)
	return string(unicode.ToUpper(r)) + strings.ToLower(brand[size:])
}

// FormatSize renders the shortest decimal form: 55 -> "55", 42.5 -> "42.5".
func FormatSize(size float64) string {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(size, 'f', -1, 64)
}

// RepairURL fixes the malformed schemes seen in scraped data.
// "httpswww.x" -> "https://www.x", "www.x" -> "https://www.x". Blank renders as NoURL.
func RepairURL(raw string) string {
	switch {
	case strings.TrimSpace(raw) == "":
		return NoURL
	case strings.HasPrefix(raw, "httpswww."):
		return "https://www." + strings.TrimPrefix(raw, "httpswww.")
	case strings.HasPrefix(raw, "www."):
		return "https://" + raw
	default:
		return raw
	}
}

// FormatSimilarity renders a score with three decimals.
func FormatSimilarity(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}

// Render writes the console block for each record, or a notice when there are none.
func Render(w io.Writer, records []Record) error {
	var b strings.Builder
	if len(records) == 0 {
		b.WriteString("No products found.\n")
	}
	for _, r := range records {
		fmt.Fprintf(&b, "%d. %s\n", r.Position, r.Name)
		fmt.Fprintf(&b, "   Brand: %s | Price: %s | Size: %s\n", r.Brand, r.Price, r.Size)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Similarity != "" {
			fmt.Fprintf(&b, "   Similarity: %s\n", r.Similarity)
		}
		b.WriteString(separatorLine)
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	return nil
}
