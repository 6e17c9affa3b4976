// # internal/ipc/server.go
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	coreerrors "pawnlens/internal/core/errors"
	"pawnlens/internal/parser"
	"pawnlens/internal/query"
	"pawnlens/internal/shared/observability"
	"pawnlens/internal/shared/util"
)

// Status is supplied by the host application; the server has no view of the
// repository beyond the query service.
type Status func() StatusResult

// Reindex asks the host to rescan the project; it returns the number of
// files indexed afterwards.
type Reindex func(ctx context.Context) (int, error)

// Server answers newline-delimited JSON queries over a reader/writer pair,
// normally stdin/stdout. One request is handled at a time; extraction and
// resolution stay single-threaded.
type Server struct {
	svc     *query.Service
	status  Status
	reindex Reindex
	limiter *util.Limiter
	log     *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewServer(svc *query.Service, status Status, reindex Reindex, limiter *util.Limiter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:     svc,
		status:  status,
		reindex: reindex,
		limiter: limiter,
		log:     log,
	}
}

// Serve reads requests until EOF or context cancellation.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return coreerrors.New(coreerrors.CodeValidationError, "server already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	decoder := json.NewDecoder(bufio.NewReader(r))
	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		resp := s.handle(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	if s.limiter != nil && !s.limiter.Allow(1) {
		observability.QueryErrorsTotal.WithLabelValues(req.Op).Inc()
		return errorResponse(req.ID, coreerrors.CodeRateLimited, "rate limit exceeded")
	}

	switch req.Op {
	case OpDefinition, OpCompletion, OpSignature:
		if req.URI == "" {
			observability.QueryErrorsTotal.WithLabelValues(req.Op).Inc()
			return errorResponse(req.ID, coreerrors.CodeValidationError, "uri is required")
		}
	}

	pos := parser.Position{Line: req.Line, Column: req.Column}

	switch req.Op {
	case OpDefinition:
		links := s.svc.Definition(ctx, req.URI, req.Text, pos)
		return okResponse(req.ID, DefinitionResult{Links: links})

	case OpCompletion:
		items := s.svc.Completion(ctx, req.URI, req.Text, pos)
		return okResponse(req.ID, CompletionResult{Items: items})

	case OpSignature:
		help := s.svc.SignatureHelp(ctx, req.URI, req.Text, pos)
		return okResponse(req.ID, SignatureResult{Signature: help})

	case OpStatus:
		if s.status == nil {
			return okResponse(req.ID, StatusResult{})
		}
		return okResponse(req.ID, s.status())

	case OpReindex:
		if s.reindex == nil {
			return errorResponse(req.ID, coreerrors.CodeNotSupported, "reindex is not available")
		}
		files, err := s.reindex(ctx)
		if err != nil {
			s.log.Error("reindex failed", "error", err)
			observability.QueryErrorsTotal.WithLabelValues(req.Op).Inc()
			return errorResponse(req.ID, coreerrors.CodeInternal, err.Error())
		}
		return okResponse(req.ID, ReindexResult{Files: files})

	default:
		observability.QueryErrorsTotal.WithLabelValues("unknown").Inc()
		return errorResponse(req.ID, coreerrors.CodeNotSupported, "unknown operation "+req.Op)
	}
}

func okResponse(id any, result any) Response {
	return Response{ID: id, OK: true, Result: result}
}

func errorResponse(id any, code coreerrors.ErrorCode, msg string) Response {
	return Response{ID: id, OK: false, Error: &ServerError{Code: string(code), Message: msg}}
}
