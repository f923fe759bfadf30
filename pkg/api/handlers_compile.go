package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/compile"
	"github.com/dd0wney/topoforge/pkg/export"
	"github.com/dd0wney/topoforge/pkg/topology"
)

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeTopology decodes the request body into a topology document.
// Returns the decoder for chaining. Check RespondError() after calling.
func (rd *requestDecoder) DecodeTopology(t **topology.Topology) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	body, err := io.ReadAll(rd.r.Body)
	if err != nil {
		rd.err = fmt.Errorf("reading request body: %w", err)
		rd.statusCode = http.StatusBadRequest
		return rd
	}
	decoded, err := topology.Decode(body)
	if err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
		return rd
	}
	*t = decoded
	return rd
}

// RespondError sends the error response and returns true if there was an error.
// Returns false if no error occurred.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var topo *topology.Topology
	if s.NewRequestDecoder(w, r).DecodeTopology(&topo).RespondError() {
		return
	}

	result, err := compile.Run(topo, compile.Options{
		Logger:  s.logger,
		Metrics: s.metricsRegistry,
	})
	if err != nil {
		var inputErr *topology.InputError
		if errors.As(err, &inputErr) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("compilation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "compilation failed")
		return
	}

	resp := CompileResponse{
		RunID:   result.RunID,
		Reports: export.Reports(result.Devices),
		Report:  export.AddressReport(result),
		Blocks:  result.Blocks,
		Summary: result.Summary,
	}
	for _, d := range result.Devices {
		resp.Devices = append(resp.Devices, DeviceResponse{
			Name:     d.Name,
			Role:     string(d.Role),
			Commands: d.Commands,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}
