// Package mcp exposes the recommendation queries as MCP tools.
package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/display"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
	"github.com/kailas-cloud/recodex/internal/version"
)

const serverName = "recodex"

// Recommender answers catalog queries.
type Recommender interface {
	RankByText(ctx context.Context, query string, topK int) ([]result.Entry, error)
	FilterByAttributes(ctx context.Context, spec filter.Spec, topK int) ([]result.Entry, error)
	BasicRecommendations(ctx context.Context, topK int) ([]result.Entry, error)
	SimilarToItem(ctx context.Context, index, topK int) ([]result.Entry, error)
}

// RankByTextInput is the argument of the rank_by_text tool.
type RankByTextInput struct {
	Query string `json:"query" jsonschema:"free-text description of the wanted product"`
	TopK  *int   `json:"top_k,omitempty" jsonschema:"maximum number of results"`
}

// FilterInput is the argument of the filter_by_attributes tool. Omitted fields impose no constraint.
type FilterInput struct {
	Brand    string   `json:"brand,omitempty" jsonschema:"brand, matched case-insensitively"`
	PriceMin *float64 `json:"price_min,omitempty" jsonschema:"minimum price, items without a price count as 0"`
	PriceMax *float64 `json:"price_max,omitempty" jsonschema:"maximum price, items without a price never match"`
	SizeMin  *float64 `json:"size_min,omitempty" jsonschema:"minimum screen size in inches"`
	SizeMax  *float64 `json:"size_max,omitempty" jsonschema:"maximum screen size in inches"`
	TopK     *int     `json:"top_k,omitempty" jsonschema:"maximum number of results"`
}

// BasicInput is the argument of the basic_recommendations tool.
type BasicInput struct {
	TopK *int `json:"top_k,omitempty" jsonschema:"maximum number of results"`
}

// SimilarInput is the argument of the similar_to_item tool.
type SimilarInput struct {
	Index int  `json:"index" jsonschema:"corpus index of the reference item"`
	TopK  *int `json:"top_k,omitempty" jsonschema:"maximum number of results"`
}

// Output is the structured result of every tool.
type Output struct {
	Items []display.Record `json:"items"`
	Total int              `json:"total"`
}

type tools struct {
	recommend   Recommender
	defaultTopK int
	logger      *zap.Logger
}

// NewServer creates an MCP server with the recommendation tools registered.
func NewServer(recommend Recommender, defaultTopK int, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &tools{recommend: recommend, defaultTopK: defaultTopK, logger: logger}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rank_by_text",
		Description: "Rank catalog products by semantic similarity to a free-text description",
	}, t.rankByText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "filter_by_attributes",
		Description: "List catalog products matching every given brand, price and size constraint, in catalog order",
	}, t.filterByAttributes)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "basic_recommendations",
		Description: "List the first catalog products, unranked",
	}, t.basicRecommendations)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "similar_to_item",
		Description: "Rank catalog products by similarity to the product at a corpus index",
	}, t.similarToItem)

	return server
}

// NewHandler serves the MCP server over streamable HTTP.
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (t *tools) rankByText(
	ctx context.Context, _ *mcp.CallToolRequest, in RankByTextInput,
) (*mcp.CallToolResult, Output, error) {
	entries, err := t.recommend.RankByText(ctx, in.Query, t.topK(in.TopK))
	return t.respond("rank_by_text", entries, err)
}

func (t *tools) filterByAttributes(
	ctx context.Context, _ *mcp.CallToolRequest, in FilterInput,
) (*mcp.CallToolResult, Output, error) {
	spec := filter.Spec{
		PriceMin: in.PriceMin,
		PriceMax: in.PriceMax,
		SizeMin:  in.SizeMin,
		SizeMax:  in.SizeMax,
	}
	if brand := strings.TrimSpace(in.Brand); brand != "" {
		spec.Brand = &brand
	}
	entries, err := t.recommend.FilterByAttributes(ctx, spec, t.topK(in.TopK))
	return t.respond("filter_by_attributes", entries, err)
}

func (t *tools) basicRecommendations(
	ctx context.Context, _ *mcp.CallToolRequest, in BasicInput,
) (*mcp.CallToolResult, Output, error) {
	entries, err := t.recommend.BasicRecommendations(ctx, t.topK(in.TopK))
	return t.respond("basic_recommendations", entries, err)
}

func (t *tools) similarToItem(
	ctx context.Context, _ *mcp.CallToolRequest, in SimilarInput,
) (*mcp.CallToolResult, Output, error) {
	entries, err := t.recommend.SimilarToItem(ctx, in.Index, t.topK(in.TopK))
	return t.respond("similar_to_item", entries, err)
}

// respond renders entries as console text and structured records.
// Errors are returned to the SDK, which reports them as tool errors.
func (t *tools) respond(tool string, entries []result.Entry, err error) (*mcp.CallToolResult, Output, error) {
	if err != nil {
		t.logger.Warn("MCP tool failed", zap.String("tool", tool), zap.Error(err))
		return nil, Output{}, err
	}

	records := display.Format(entries)
	var text strings.Builder
	if err := display.Render(&text, records); err != nil {
		return nil, Output{}, err //nolint:wrapcheck // already prefixed by display
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text.String()}},
	}, Output{Items: records, Total: len(records)}, nil
}

func (t *tools) topK(p *int) int {
	if p == nil {
		return t.defaultTopK
	}
	return *p
}
