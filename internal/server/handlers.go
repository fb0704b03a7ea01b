package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/huangsam/storecheck/core"
	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
)

// Request limits. Part sizes are counted even when they exceed maxMemory.
const (
	maxRequestBytes   = 8 << 20
	maxUploadMemory   = 32 << 20
	maxManifestBytes  = 1 << 20
	manifestFormField = "manifest"
	filesFormField    = "files"
)

// Error messages returned to API clients.
const (
	msgParseManifest   = "could not parse manifest"
	msgMissingManifest = "manifest is missing from the upload"
	msgInvalidRequest  = "invalid request body"
	msgInvalidFiles    = "every file needs a name and a non-negative size"
	msgBodyTooLarge    = "request body too large"
)

// ValidateRequest is the JSON body of POST /api/v1/validate.
type ValidateRequest struct {
	Manifest json.RawMessage `json:"manifest"`
	Files    policy.FileSet  `json:"files"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the validation API.
type Handler struct {
	cfg *contract.Config
	mgr contract.StoreManager
}

// NewHandler creates a handler that validates against cfg.Rulebook.
func NewHandler(cfg *contract.Config, mgr contract.StoreManager) *Handler {
	return &Handler{cfg: cfg, mgr: mgr}
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Rules returns the active rulebook.
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.cfg.Rulebook)
}

// Validate validates a manifest and file list sent as JSON.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var body ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to decode request")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if len(body.Manifest) == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, msgMissingManifest)
		return
	}
	for _, f := range body.Files {
		if f.Name == "" || f.Size < 0 {
			writeError(w, r, http.StatusBadRequest, msgInvalidFiles)
			return
		}
	}
	h.validate(w, r, body.Manifest, body.Files)
}

// ValidateUpload validates a multipart upload: one "manifest" part and any
// number of "files" parts whose sizes make up the file set.
func (h *Handler) ValidateUpload(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn().Err(err).Msg("failed to parse multipart upload")
		writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	manifestJSON, err := readManifestPart(r)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, r, http.StatusUnprocessableEntity, msgMissingManifest)
			return
		}
		logger.Warn().Err(err).Msg("failed to read manifest part")
		writeError(w, r, http.StatusUnprocessableEntity, msgParseManifest)
		return
	}

	files := policy.FileSet{{Name: policy.ManifestFile, Size: int64(len(manifestJSON))}}
	for _, fh := range r.MultipartForm.File[filesFormField] {
		files = append(files, policy.FileEntry{Name: partName(fh), Size: fh.Size})
	}
	h.validate(w, r, manifestJSON, files)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, manifestJSON []byte, files policy.FileSet) {
	sub, err := policy.NewSubmission("api:"+r.URL.Path, manifestJSON, files)
	if err != nil {
		zerolog.Ctx(r.Context()).Info().Err(err).Msg("rejected manifest")
		writeError(w, r, http.StatusUnprocessableEntity, msgParseManifest)
		return
	}

	ctx := r.Context()
	if h.mgr != nil {
		ctx = core.WithStoreManager(ctx, h.mgr)
	}
	res := core.ValidateSubmission(ctx, h.cfg, sub)

	zerolog.Ctx(r.Context()).Info().
		Str("extension", res.Extension).
		Int("score", res.Score).
		Int("findings", len(res.Findings)).
		Bool("cached", res.Cached).
		Msg("validated manifest")
	writeJSON(w, r, http.StatusOK, res)
}

// readManifestPart returns the manifest from a file part, falling back to a plain form value.
func readManifestPart(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile(manifestFormField)
	if err == nil {
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(io.LimitReader(file, maxManifestBytes+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxManifestBytes {
			return nil, fmt.Errorf("manifest exceeds %d bytes", maxManifestBytes)
		}
		return data, nil
	}
	if values := r.MultipartForm.Value[manifestFormField]; len(values) > 0 {
		return []byte(values[0]), nil
	}
	return nil, http.ErrMissingFile
}

// partName returns the relative path sent as the part's filename.
// multipart.FileHeader.Filename keeps only the base name, so the raw
// Content-Disposition header is consulted first.
func partName(fh *multipart.FileHeader) string {
	if _, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition")); err == nil {
		if name := strings.TrimPrefix(params["filename"], "./"); name != "" {
			return filepath.ToSlash(name)
		}
	}
	return fh.Filename
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
