package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/depmerge/pkg/buildinfo"
	"github.com/matzehuels/depmerge/pkg/diagnostics"
	"github.com/matzehuels/depmerge/pkg/errors"
	depio "github.com/matzehuels/depmerge/pkg/io"
	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/pipeline"
)

// textFormats are the formats the API returns; binary formats are CLI only.
var textFormats = map[string]bool{
	pipeline.FormatText: true,
	pipeline.FormatJSON: true,
	pipeline.FormatDOT:  true,
	pipeline.FormatSVG:  true,
}

type mergeRequest struct {
	pipeline.Options
	Project string `json:"project,omitempty"`
}

type mergeResponse struct {
	Graph       string             `json:"graph"`
	Nodes       int                `json:"nodes"`
	Edges       int                `json:"edges"`
	CacheHit    bool               `json:"cache_hit"`
	Diagnostics diagnostics.Report `json:"diagnostics"`
	Artifacts   map[string]string  `json:"artifacts,omitempty"`
	RecordID    string             `json:"record_id,omitempty"`
}

type errorResponse struct {
	Error     string                   `json:"error"`
	Code      errors.Code              `json:"code,omitempty"`
	RequestID string                   `json:"request_id"`
	Malformed []pipeline.MalformedLine `json:"malformed,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	for _, f := range req.Formats {
		if !textFormats[f] {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "format %q is not available over HTTP", f))
			return
		}
	}
	req.Toolchain = withServerToolchain(req.Toolchain, s.cfg.Toolchain)
	if req.Libraries == nil {
		req.Libraries = []library.Descriptor{}
	}
	if req.Project != "" {
		if s.cfg.Store == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "server has no graph store"))
			return
		}
		if err := errors.ValidateProjectKey(req.Project); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	opts := req.Options
	opts.Logger = s.cfg.Logger
	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := mergeResponse{
		Graph:       string(res.Text),
		Nodes:       res.Stats.NodeCount,
		Edges:       res.Stats.EdgeCount,
		CacheHit:    res.CacheHit,
		Diagnostics: res.Report,
		Artifacts:   make(map[string]string, len(res.Artifacts)),
	}
	for f, data := range res.Artifacts {
		resp.Artifacts[f] = string(data)
	}

	if req.Project != "" {
		rec, err := s.cfg.Store.Save(r.Context(), req.Project, res.Graph)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.RecordID = rec.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// withServerToolchain fills each empty field of tc from the server's toolchain.
func withServerToolchain(tc, def library.Toolchain) library.Toolchain {
	if tc.Home == "" {
		tc.Home = def.Home
	}
	if tc.Version == "" {
		tc.Version = def.Version
	}
	if tc.BundledDir == "" {
		tc.BundledDir = def.BundledDir
	}
	return tc
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request"))
		return
	}

	res, err := s.cfg.Runner.Inspect(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     "malformed manifest",
			Code:      errors.ErrCodeInvalidManifest,
			RequestID: RequestID(r.Context()),
			Malformed: res.Malformed,
		})
		return
	}

	body, err := depio.Marshal(res.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleProjectGraph(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "server has no graph store"))
		return
	}
	rec, err := s.cfg.Store.Latest(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Record-ID", rec.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rec.Text)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidID, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidDescriptor, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "err", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
