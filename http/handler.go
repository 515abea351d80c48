package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/b2files"
	"github.com/sagarc03/b2files/emulator"
)

// InfoHeaderPrefix marks upload headers that become file info entries.
const InfoHeaderPrefix = "X-Bz-Info-"

const (
	maxJSONBodyBytes      = 1 << 20
	defaultMaxUploadBytes = 5 << 30
)

// Service is the emulator behavior the handler exposes.
type Service interface {
	Authorize(ctx context.Context, keyID, key string) (b2files.Authorization, error)
	ListFileNames(ctx context.Context, accountToken string, q b2files.ListQuery) (b2files.FileListPage, error)
	GetUploadURL(ctx context.Context, accountToken, bucketID string) (b2files.UploadCredential, error)
	UploadFile(ctx context.Context, uploadToken string, in emulator.UploadInput) (b2files.FileRecord, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS           CORSConfig
	MaxUploadBytes int64 // default: 5 GiB
	Logger         *slog.Logger
}

// Handler serves the B2 file endpoints.
type Handler struct {
	config  HandlerConfig
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		config:  cfg,
		service: service,
		logger:  logger,
	}
}

// Router returns an http.Handler with every endpoint mounted under b2files.APIPath.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.logger))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Route(b2files.APIPath, func(r chi.Router) {
		r.Get("/b2_authorize_account", h.handleAuthorize)

		r.Group(func(r chi.Router) {
			r.Use(RequireToken)
			r.Post("/b2_list_file_names", h.handleListFileNames)
			r.Post("/b2_get_upload_url", h.handleGetUploadURL)
			r.Post("/b2_upload_file/{bucketId}", h.handleUploadFile)
		})
	})

	return r
}

func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	keyID, key, ok := r.BasicAuth()
	if !ok {
		WriteError(w, http.StatusUnauthorized, "bad_auth_token", "missing basic authorization")
		return
	}

	auth, err := h.service.Authorize(r.Context(), keyID, key)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, auth)
}

type listFileNamesRequest struct {
	BucketID      string `json:"bucketId"`
	StartFileName string `json:"startFileName"`
	MaxFileCount  int    `json:"maxFileCount"`
}

func (h *Handler) handleListFileNames(w http.ResponseWriter, r *http.Request) {
	var req listFileNamesRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	page, err := h.service.ListFileNames(r.Context(), tokenFromContext(r.Context()), b2files.ListQuery{
		BucketID:      req.BucketID,
		StartFileName: req.StartFileName,
		MaxFileCount:  req.MaxFileCount,
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, page)
}

type getUploadURLRequest struct {
	BucketID string `json:"bucketId"`
}

func (h *Handler) handleGetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req getUploadURLRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cred, err := h.service.GetUploadURL(r.Context(), tokenFromContext(r.Context()), req.BucketID)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, cred)
}

func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	fileName, err := url.PathUnescape(r.Header.Get(b2files.HeaderFileName))
	if err != nil || fileName == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid "+b2files.HeaderFileName+" header")
		return
	}

	if r.ContentLength < 0 {
		WriteError(w, http.StatusBadRequest, "bad_request", "Content-Length is required")
		return
	}

	if r.ContentLength > h.config.MaxUploadBytes {
		WriteError(w, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("content length %d exceeds limit %d", r.ContentLength, h.config.MaxUploadBytes))
		return
	}

	sha := r.Header.Get(b2files.HeaderContentSHA1)
	if sha == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", b2files.HeaderContentSHA1+" header is required")
		return
	}

	info, err := fileInfoFromHeaders(r.Header)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rec, err := h.service.UploadFile(r.Context(), tokenFromContext(r.Context()), emulator.UploadInput{
		BucketID:      chi.URLParam(r, "bucketId"),
		FileName:      fileName,
		ContentType:   r.Header.Get(b2files.HeaderContentType),
		ContentLength: r.ContentLength,
		ContentSHA1:   sha,
		FileInfo:      info,
		Body:          r.Body,
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, rec)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func fileInfoFromHeaders(h http.Header) (map[string]string, error) {
	var info map[string]string
	for name, values := range h {
		if len(values) == 0 || !strings.HasPrefix(name, InfoHeaderPrefix) {
			continue
		}

		key := strings.ToLower(strings.TrimPrefix(name, InfoHeaderPrefix))
		value, err := url.PathUnescape(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid %s header: %w", name, err)
		}

		if info == nil {
			info = make(map[string]string)
		}
		info[key] = value
	}
	return info, nil
}
