package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/extract"
	"github.com/FocuswithJustin/WikiruKit/core/flex"
	"github.com/FocuswithJustin/WikiruKit/core/variant"
	"github.com/FocuswithJustin/WikiruKit/core/wikitext"
	"github.com/FocuswithJustin/WikiruKit/internal/cache"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
	"github.com/FocuswithJustin/WikiruKit/internal/validation"
)

// Version is reported by /health and set by the CLI at startup.
var Version = "dev"

// maxBody bounds a request carrying both an article and a table.
const maxBody = 2*validation.MaxTextSize + 64<<10

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID string `json:"request_id,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RebuildRequest is the body of POST /flex/rebuild and of each /ws frame.
type RebuildRequest struct {
	Article   string `json:"article"`
	Table     string `json:"table"`
	Page      string `json:"page,omitempty"`
	MaxOutput *int   `json:"max_output,omitempty"`
	Comments  bool   `json:"comments,omitempty"`
	Variant   string `json:"variant,omitempty"`
}

// TargetInfo summarizes one directive's selection.
type TargetInfo struct {
	Line          int      `json:"line"`
	Units         []string `json:"units"`
	Comments      []string `json:"comments"`
	LimitExceeded bool     `json:"limit_exceeded"`
}

// RebuildResponse is the result of a rebuild.
type RebuildResponse struct {
	Text        string       `json:"text"`
	Changed     bool         `json:"changed"`
	Pairs       int          `json:"pairs"`
	Targets     []TargetInfo `json:"targets"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
}

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	Article string `json:"article"`
	Profile string `json:"profile"`
	Current string `json:"current,omitempty"`
}

// ExtractResponse carries the row and the updated accumulated output.
type ExtractResponse struct {
	Row    string            `json:"row"`
	Output string            `json:"output"`
	Added  bool              `json:"added"`
	Fields map[string]string `json:"fields"`
}

// WikitextRequest is the body of POST /wikitext/{op}.
type WikitextRequest struct {
	Text    string `json:"text"`
	Page    string `json:"page,omitempty"`
	Heading string `json:"heading,omitempty"`
	Depth   int    `json:"depth,omitempty"`
	Shadow  bool   `json:"shadow,omitempty"`
	WithSR  bool   `json:"sr,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	respond(w, r, http.StatusOK, map[string]any{
		"name":    "wikiru",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /variants",
			"GET /profiles",
			"POST /flex/rebuild",
			"POST /extract",
			"POST /wikitext/{op}",
			"WS /ws",
		},
		"wikitext_ops": WikitextOps,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Cached:  s.results.Len(),
	})
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, variant.Names())
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, extract.BuiltinNames())
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if !decode(w, r, &req) {
		return
	}
	res, cached, err := s.rebuild(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondMeta(w, r, http.StatusOK, res, cached)
}

// rebuild runs a cached flex rebuild. The HTTP and WebSocket paths share it.
func (s *Server) rebuild(ctx context.Context, req RebuildRequest) (*RebuildResponse, bool, error) {
	if err := validation.ValidateText([]byte(req.Article)); err != nil {
		return nil, false, errors.NewValidation("article", err.Error())
	}
	if err := validation.ValidateText([]byte(req.Table)); err != nil {
		return nil, false, errors.NewValidation("table", err.Error())
	}
	opts := flex.Options{
		Page:            req.Page,
		MaxOutput:       flex.DefaultMaxOutput,
		IncludeComments: req.Comments,
	}
	if opts.Page == "" {
		opts.Page = flex.DefaultPage
	}
	if req.MaxOutput != nil {
		opts.MaxOutput = *req.MaxOutput
	}
	name := req.Variant
	if name == "" {
		name = "icon"
	}
	v, err := variant.Get(name)
	if err != nil {
		return nil, false, err
	}
	opts.Variant = v

	key := cache.Key(req.Article, req.Table, opts.Page, strconv.Itoa(opts.MaxOutput),
		strconv.FormatBool(opts.IncludeComments), v.Name())
	if res, ok := s.results.Get(key); ok {
		return res, true, nil
	}

	result, err := flex.Rebuild(ctx, req.Article, req.Table, opts)
	if err != nil {
		return nil, false, err
	}
	res := &RebuildResponse{
		Text:    result.Text,
		Changed: result.Text != req.Article,
		Pairs:   len(result.Pairs),
		Targets: make([]TargetInfo, 0, len(result.Targets)),
	}
	for _, t := range result.Targets {
		res.Targets = append(res.Targets, TargetInfo{
			Line:          t.Line,
			Units:         t.Units,
			Comments:      t.Comments,
			LimitExceeded: t.LimitExceeded,
		})
	}
	for _, d := range result.Diagnostics {
		res.Diagnostics = append(res.Diagnostics, d.Error())
	}
	s.results.Set(key, res)
	return res, false, nil
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validation.ValidateText([]byte(req.Article)); err != nil {
		respondErr(w, errors.NewValidation("article", err.Error()))
		return
	}
	if req.Profile == "" {
		respondErr(w, errors.NewValidation("profile", "must not be empty"))
		return
	}
	p, err := extract.Builtin(req.Profile)
	if err != nil {
		respondErr(w, err)
		return
	}
	rec, err := extract.Extract(req.Article, p)
	if err != nil {
		respondErr(w, err)
		return
	}
	row := rec.Row()
	out, added := extract.AppendRow(req.Current, row)
	respond(w, r, http.StatusOK, ExtractResponse{Row: row, Output: out, Added: added, Fields: rec.Fields()})
}

func (s *Server) handleWikitext(w http.ResponseWriter, r *http.Request) {
	var req WikitextRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validation.ValidateText([]byte(req.Text)); err != nil {
		respondErr(w, errors.NewValidation("text", err.Error()))
		return
	}
	out, err := applyWikitext(r.PathValue("op"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"text": out})
}

// WikitextOps lists the operations accepted by /wikitext/{op}.
var WikitextOps = []string{"atk", "columns", "contents", "includex", "shadowheader", "strip-flex", "strip-regions"}

func applyWikitext(op string, req WikitextRequest) (string, error) {
	depth := req.Depth
	if depth == 0 {
		depth = 1
	}
	switch op {
	case "atk":
		return wikitext.AnnotateAttackPower(req.Text), nil
	case "columns":
		if req.Heading == "" {
			return "", errors.NewValidation("heading", "must not be empty")
		}
		return wikitext.CreateColumnIncludex(req.Text, req.Heading, depth, req.WithSR), nil
	case "contents":
		if req.Page == "" {
			return "", errors.NewValidation("page", "must not be empty")
		}
		return wikitext.ContentsLinks(req.Text, req.Page, req.Depth), nil
	case "includex":
		return wikitext.CreateIncludex(req.Text, wikitext.IncludexOptions{
			Heading: req.Heading,
			Depth:   depth,
			Shadow:  req.Shadow,
			WithSR:  req.WithSR,
		}), nil
	case "shadowheader":
		return wikitext.ConvertToShadowHeaders(req.Text), nil
	case "strip-flex":
		return wikitext.RemoveFlexBlocks(req.Text), nil
	case "strip-regions":
		return wikitext.RemoveRegionBlocks(req.Text), nil
	}
	return "", errors.NewNotFound("operation", op)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, errors.ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, errors.ErrUnsupported):
		return "UNSUPPORTED"
	}
	return "INTERNAL"
}

func respondErr(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "NOT_FOUND":
		status = http.StatusNotFound
	case "INVALID_INPUT", "UNSUPPORTED":
		status = http.StatusBadRequest
	default:
		logging.Error("request failed", "error", err)
	}
	respondError(w, status, code, err.Error())
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	respondMeta(w, r, status, data, false)
}

func respondMeta(w http.ResponseWriter, r *http.Request, status int, data any, cached bool) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID: logging.GetRequestID(r.Context()),
			Cached:    cached,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
