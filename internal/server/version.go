package server

import (
	"encoding/json"
	"net/http"

	"github.com/desertthunder/acx/internal/shared"
)

// VersionInfo is the release descriptor returned by GET /getAppVersion.
type VersionInfo struct {
	Version     string   `json:"version"`
	BuildNumber int      `json:"buildNumber"`
	Message     string   `json:"message"`
	ForceUpdate bool     `json:"forceUpdate"`
	Features    []string `json:"features"`
	ReleaseDate string   `json:"releaseDate"`
	DownloadURL string   `json:"downloadUrl"`
}

// NewVersionInfo builds the descriptor from the [version] config section.
func NewVersionInfo(cfg shared.VersionConfig) VersionInfo {
	features := cfg.Features
	if features == nil {
		features = []string{}
	}
	return VersionInfo{
		Version:     cfg.Version,
		BuildNumber: cfg.BuildNumber,
		Message:     cfg.Message,
		ForceUpdate: cfg.ForceUpdate,
		Features:    features,
		ReleaseDate: cfg.ReleaseDate,
		DownloadURL: cfg.DownloadURL,
	}
}

// VersionCheckRequest is the payload of POST /checkAppVersion.
type VersionCheckRequest struct {
	CurrentVersion string `json:"currentVersion"`
	CurrentBuild   int    `json:"currentBuild"`
}

// VersionCheckResult tells a client whether a newer build is available.
type VersionCheckResult struct {
	HasUpdate      bool     `json:"hasUpdate"`
	CurrentVersion string   `json:"currentVersion"`
	CurrentBuild   int      `json:"currentBuild"`
	LatestVersion  string   `json:"latestVersion"`
	LatestBuild    int      `json:"latestBuild"`
	Message        string   `json:"message"`
	ForceUpdate    bool     `json:"forceUpdate"`
	Features       []string `json:"features"`
	ReleaseDate    string   `json:"releaseDate"`
	DownloadURL    string   `json:"downloadUrl"`
}

// Check compares a client's build against the latest one.
// Missing request fields default to version 0.0.0, build 0.
func (v VersionInfo) Check(req VersionCheckRequest) VersionCheckResult {
	return VersionCheckResult{
		HasUpdate:      v.BuildNumber > req.CurrentBuild,
		CurrentVersion: shared.OrDefault(req.CurrentVersion, "0.0.0"),
		CurrentBuild:   req.CurrentBuild,
		LatestVersion:  v.Version,
		LatestBuild:    v.BuildNumber,
		Message:        v.Message,
		ForceUpdate:    v.ForceUpdate,
		Features:       v.Features,
		ReleaseDate:    v.ReleaseDate,
		DownloadURL:    v.DownloadURL,
	}
}

// VersionHandler serves the static version descriptor.
type VersionHandler struct {
	info VersionInfo
}

// NewVersionHandler creates a handler for info.
func NewVersionHandler(info VersionInfo) *VersionHandler {
	return &VersionHandler{info: info}
}

// Routes returns the HTTP routes this handler serves.
func (h *VersionHandler) Routes() []string {
	return []string{"/getAppVersion"}
}

// ServeHTTP answers preflight requests with 204 and GET with the descriptor. Any other method is rejected.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.info)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Méthode non autorisée"})
	}
}

// VersionCheckHandler serves the callable check endpoint.
//
// Requests use the callable envelope {"data": {...}} and responses {"result": {...}}.
type VersionCheckHandler struct {
	info VersionInfo
}

// NewVersionCheckHandler creates a check handler for info.
func NewVersionCheckHandler(info VersionInfo) *VersionCheckHandler {
	return &VersionCheckHandler{info: info}
}

// Routes returns the HTTP routes this handler serves.
func (h *VersionCheckHandler) Routes() []string {
	return []string{"/checkAppVersion"}
}

type callableRequest struct {
	Data VersionCheckRequest `json:"data"`
}

type callableResponse struct {
	Result VersionCheckResult `json:"result"`
}

type callableError struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *VersionCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeCallableError(w, http.StatusMethodNotAllowed, "INVALID_ARGUMENT", "method not allowed")
		return
	}

	var req callableRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeCallableError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
			return
		}
	}

	writeJSON(w, http.StatusOK, callableResponse{Result: h.info.Check(req.Data)})
}

func writeCallableError(w http.ResponseWriter, status int, code, message string) {
	var body callableError
	body.Error.Status = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NewVersionRouter wires the version endpoints with CORS and request logging.
func NewVersionRouter(info VersionInfo, mw ...Middleware) *BasicRouter {
	router := NewBasicRouter()
	router.Use(mw...)
	router.Use(CORS("GET, POST, OPTIONS"))
	router.Handler(NewVersionHandler(info))
	router.Handler(NewVersionCheckHandler(info))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return router
}
