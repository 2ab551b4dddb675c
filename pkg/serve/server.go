// Package serve exposes a pool over an NDJSON stream: check requests in on
// stdin, aggregated results out on stdout. It owns the JSON encoding of
// checks and matches, and rejects malformed requests before they reach the
// pool.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/quillcheck/quillcheck/pkg/pool"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server manages the streaming checker
type Server struct {
	pool    *pool.Pool
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a new streaming server
func NewServer(p *pool.Pool, in io.Reader, out io.Writer) *Server {
	return &Server{
		pool:    p,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	// Send ready signal
	s.sendReady()

	// Use buffered channels for incoming requests
	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until stdin closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					// No more pending requests
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "check":
		s.handleCheck(ctx, req.Payload)
	case "categories":
		s.handleCategories()
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	data, _ := json.Marshal(ReadyData{Version: Version})
	s.encoder.Encode(Response{
		Success: true,
		Type:    "ready",
		Data:    data,
	})
}

func (s *Server) handleCheck(ctx context.Context, payload json.RawMessage) {
	var p CheckPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("check", err.Error())
		return
	}

	check := types.Check{
		DocumentID:  p.ID,
		SetID:       p.SetID,
		CategoryIDs: p.CategoryIDs,
		Blocks:      p.Blocks,
	}
	if p.SetID == "" {
		s.sendError("check", "setId is required")
		return
	}
	if err := check.Validate(); err != nil {
		s.sendError("check", err.Error())
		return
	}

	result, err := s.pool.Check(ctx, check)
	if err != nil {
		s.sendError("check", err.Error())
		return
	}

	data, _ := json.Marshal(CheckData{
		Input: concatBlocks(check.Blocks),
		Results: CheckResults{
			CategoryIDs: result.CategoryIDs,
			Matches:     result.Matches,
		},
	})
	s.encoder.Encode(Response{
		Success: true,
		Type:    "check",
		Data:    data,
	})
}

func (s *Server) handleCategories() {
	data, _ := json.Marshal(CategoriesData{Categories: s.pool.CurrentCategories()})
	s.encoder.Encode(Response{
		Success: true,
		Type:    "categories",
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}

// concatBlocks joins block texts in order for the response's input echo.
func concatBlocks(blocks []types.TextBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text)
	}
	return sb.String()
}
