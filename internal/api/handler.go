package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/cms-admin/internal/cmsconfig"
	"github.com/eugenenazirov/cms-admin/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxValidateBodyBytes = 1 << 20

// Reloader re-fetches the CMS configuration from its source and stores it.
type Reloader interface {
	Reload(ctx context.Context) (storage.Snapshot, error)
}

// Handler wires storage and reload dependencies into HTTP handlers.
type Handler struct {
	storage  storage.Storage
	reloader Reloader

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithReloader enables the reload endpoint.
func WithReloader(r Reloader) HandlerOption {
	return func(h *Handler) {
		h.reloader = r
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	_, err := h.storage.Current()
	resp := healthResponse{
		Status:       "ok",
		Timestamp:    h.clock(),
		ConfigLoaded: err == nil,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	snapshot, ok := h.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newConfigResponse(snapshot, ""))
}

func (h *Handler) handleValidateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValidateBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid request", fmt.Sprintf("config document must not exceed %d bytes", maxValidateBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to read request body")
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "request body must contain a YAML or JSON config document")
		return
	}

	cfg, err := cmsconfig.ParseYAML(body)
	if err != nil {
		var cfgErr *cmsconfig.ConfigError
		if errors.As(err, &cfgErr) {
			writeConfigError(w, http.StatusUnprocessableEntity, cfgErr)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Config: &cfg})
}

func (h *Handler) handleReloadConfig(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		writeError(w, http.StatusNotImplemented, "Reload unavailable", "no config source is configured")
		return
	}

	snapshot, err := h.reloader.Reload(r.Context())
	if err != nil {
		var cfgErr *cmsconfig.ConfigError
		if errors.As(err, &cfgErr) {
			writeConfigError(w, http.StatusUnprocessableEntity, cfgErr)
			return
		}
		writeError(w, http.StatusBadGateway, "Config source unavailable", err.Error(),
			"The previously loaded configuration remains active")
		return
	}

	writeJSON(w, http.StatusOK, newConfigResponse(snapshot, "CMS config reloaded successfully"))
}

func (h *Handler) handleRecordList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", "page must be a positive integer")
			return
		}
		page = parsed
	}

	snapshot, ok := h.currentSnapshot(w)
	if !ok {
		return
	}

	name := r.PathValue("name")
	record, found := snapshot.Config.Record(name)
	if !found {
		writeError(w, http.StatusNotFound, "Unknown record", fmt.Sprintf("record %q is not declared in the CMS config", name))
		return
	}

	query, err := record.ListQuery(page)
	if err != nil {
		if errors.Is(err, cmsconfig.ErrInvalidPage) {
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		ListQuery: query,
		Label:     record.List.Label,
		Fields:    record.List.Fields,
	})
}

func (h *Handler) currentSnapshot(w http.ResponseWriter) (storage.Snapshot, bool) {
	snapshot, err := h.storage.Current()
	if err != nil {
		if errors.Is(err, storage.ErrNotLoaded) {
			writeError(w, http.StatusServiceUnavailable, "Config not loaded", err.Error())
			return storage.Snapshot{}, false
		}
		writeInternalError(w, err)
		return storage.Snapshot{}, false
	}
	return snapshot, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type configResponse struct {
	Config   cmsconfig.CmsConfig `json:"config"`
	Source   string              `json:"source"`
	LoadedAt time.Time           `json:"loadedAt"`
	Message  string              `json:"message,omitempty"`
}

func newConfigResponse(snapshot storage.Snapshot, message string) configResponse {
	return configResponse{
		Config:   snapshot.Config,
		Source:   snapshot.Source,
		LoadedAt: snapshot.LoadedAt,
		Message:  message,
	}
}

type validateResponse struct {
	Valid  bool                 `json:"valid"`
	Config *cmsconfig.CmsConfig `json:"config,omitempty"`
}

type recordListResponse struct {
	cmsconfig.ListQuery
	Label  string                  `json:"label"`
	Fields []cmsconfig.FieldConfig `json:"fields"`
}

type healthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	ConfigLoaded bool      `json:"configLoaded"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Path       string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeConfigError(w http.ResponseWriter, status int, err *cmsconfig.ConfigError) {
	writeJSON(w, status, errorResponse{
		Error:   "Invalid CMS config",
		Details: err.Error(),
		Kind:    err.Kind.String(),
		Path:    err.Path,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
