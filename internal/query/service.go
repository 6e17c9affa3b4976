// # internal/query/service.go
package query

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pawnlens/internal/graph"
	"pawnlens/internal/parser"
	"pawnlens/internal/shared/observability"
)

// Service answers editor queries against the item repository. Each query
// takes the file identity, the text of the cursor's line, and the cursor
// position; the repository supplies everything else.
type Service struct {
	repo *graph.Repository
	log  *slog.Logger
}

func NewService(repo *graph.Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) Definition(ctx context.Context, uri, line string, pos parser.Position) []LocationLink {
	_, span := observability.Tracer.Start(ctx, "query.Definition", trace.WithAttributes(
		attribute.String("uri", uri),
	))
	defer span.End()
	timer := prometheus.NewTimer(observability.QueryDuration.WithLabelValues("definition"))
	defer timer.ObserveDuration()

	links := s.definition(uri, line, pos)
	span.SetAttributes(attribute.Int("results", len(links)))
	return links
}

func (s *Service) Completion(ctx context.Context, uri, line string, pos parser.Position) []CompletionItem {
	_, span := observability.Tracer.Start(ctx, "query.Completion", trace.WithAttributes(
		attribute.String("uri", uri),
	))
	defer span.End()
	timer := prometheus.NewTimer(observability.QueryDuration.WithLabelValues("completion"))
	defer timer.ObserveDuration()

	entries := s.completion(uri, line, pos)
	span.SetAttributes(attribute.Int("results", len(entries)))
	return entries
}

func (s *Service) SignatureHelp(ctx context.Context, uri, line string, pos parser.Position) *SignatureHelp {
	_, span := observability.Tracer.Start(ctx, "query.SignatureHelp", trace.WithAttributes(
		attribute.String("uri", uri),
	))
	defer span.End()
	timer := prometheus.NewTimer(observability.QueryDuration.WithLabelValues("signature"))
	defer timer.ObserveDuration()

	return s.signatureHelp(uri, line, pos)
}

// visible resolves the aggregate item set for one file.
func (s *Service) visible(uri string) []*parser.Item {
	return s.repo.VisibleItems(uri)
}

func kindLabel(k parser.ItemKind) string {
	return k.String()
}
