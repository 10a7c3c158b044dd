package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-mrz-scanner/document/chip"
	"go-mrz-scanner/document/mrz"
	"go-mrz-scanner/events"
	"go-mrz-scanner/models"

	"github.com/gorilla/mux"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_INVALID_REQUEST = "invalid request"
const ERR_SESSION_STORE = "failed to store scan session"
const ERR_SESSION_RETRIEVAL = "failed to retrieve scan session"
const ERR_SESSION_REMOVAL = "failed to remove scan session"
const ERR_UNKNOWN_SESSION = "unknown session"
const ERR_NOT_ACCEPTED = "scan not accepted"

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

type ServerState struct {
	sessionStorage SessionStorage
	// nil when no signing key is configured
	receiptSigner ReceiptSigner
	publisher     events.Publisher
	sessionLocks  sessionLocks
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func newRouter(state *ServerState) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/start-scan", func(w http.ResponseWriter, r *http.Request) {
		handleStartScan(state, w, r)
	})
	router.HandleFunc("/api/scan-frame", func(w http.ResponseWriter, r *http.Request) {
		handleScanFrame(state, w, r)
	})
	router.HandleFunc("/api/parse-mrz", func(w http.ResponseWriter, r *http.Request) {
		handleParseMrz(w, r)
	})
	router.HandleFunc("/api/end-scan", func(w http.ResponseWriter, r *http.Request) {
		handleEndScan(state, w, r)
	})
	router.HandleFunc("/api/verify-chip", func(w http.ResponseWriter, r *http.Request) {
		handleVerifyChip(state, w, r)
	})

	slog.Debug("Registered all API routes")
	return router
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	if state.sessionStorage == nil {
		return nil, fmt.Errorf("no session storage configured")
	}
	if state.publisher == nil {
		state.publisher = events.NoopPublisher{}
	}

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler:      newRouter(state),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

// ScanAcceptedEvent is published once per session when a frame is accepted.
type ScanAcceptedEvent struct {
	SessionId      string           `json:"session_id"`
	Format         mrz.Format       `json:"format"`
	DocumentKind   mrz.DocumentKind `json:"document_kind"`
	IssuingCountry string           `json:"issuing_country"`
	AccessSeed     chip.AccessSeed  `json:"access_seed"`
	Expired        bool             `json:"expired"`
}

func handleStartScan(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to start scan")

	sessionId := GenerateSessionId()
	if sessionId == "" {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "failed to generate session ID", fmt.Errorf("failed to generate session ID"))
		return
	}

	err := state.sessionStorage.StoreSession(r.Context(), sessionId, mrz.NewSession().Snapshot())
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_SESSION_STORE, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, models.StartScanResponse{SessionId: sessionId}); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Scan started", "session_id", sessionId)
}

func handleScanFrame(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeRequest[models.ScanFrameRequest](r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode scan frame request", err)
		return
	}

	unlock := state.sessionLocks.lock(request.SessionId)
	defer unlock()

	session, ok := loadSession(state, w, r, request.SessionId)
	if !ok {
		return
	}

	wasAccepted := session.State() == mrz.StateAccepted
	record, scanErr := session.Scan(request.Text)

	if err := state.sessionStorage.StoreSession(r.Context(), request.SessionId, session.Snapshot()); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_SESSION_STORE, err)
		return
	}

	response := models.ScanFrameResponse{
		State:    session.State(),
		Accepted: session.State() == mrz.StateAccepted,
		Error:    mrz.KindOf(scanErr),
		Record:   record,
	}
	slog.Debug("Frame scanned", "session_id", request.SessionId, "state", response.State, "error", response.Error)

	if response.Accepted {
		if !wasAccepted {
			slog.Info("Scan accepted", "session_id", request.SessionId, "format", record.Format)
			publishScanAccepted(r.Context(), state.publisher, request.SessionId, record)
		}
		if state.receiptSigner != nil {
			response.Receipt, err = state.receiptSigner.CreateScanReceipt(request.SessionId, record)
			if err != nil {
				respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "failed to create scan receipt", err)
				return
			}
		}
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}
}

// publishScanAccepted logs publication failures; the scan itself already
// succeeded.
func publishScanAccepted(ctx context.Context, publisher events.Publisher, sessionId string, record *mrz.Record) {
	seed, err := chip.SeedFromRecord(record)
	if err != nil {
		slog.Warn("Accepted record has no access seed", "session_id", sessionId, "error", err)
		return
	}

	event := ScanAcceptedEvent{
		SessionId:      sessionId,
		Format:         record.Format,
		DocumentKind:   record.DocumentKind,
		IssuingCountry: record.IssuingCountry,
		AccessSeed:     seed,
	}
	if expiry, err := record.ExpirationDate.ExpiryTime(); err == nil {
		event.Expired = expiry.Before(time.Now())
	}
	if err := publisher.Publish(ctx, events.ScanAccepted, event); err != nil {
		slog.Warn("Failed to publish scan accepted event", "session_id", sessionId, "error", err)
	}
}

func handleParseMrz(w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeRequest[models.ParseMrzRequest](r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode parse request", err)
		return
	}

	var response models.ParseMrzResponse
	record, err := mrz.Parse(request.Text)
	if err != nil {
		response.Error = mrz.KindOf(err)
	} else {
		response.Record = record
		response.Acceptable = record.Acceptable()
		if !response.Acceptable {
			response.Error = mrz.KindOf(mrz.ErrInvalidCheckDigits)
		}
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}
}

func handleEndScan(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeRequest[models.EndScanRequest](r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode end scan request", err)
		return
	}

	err = state.sessionStorage.RemoveSession(r.Context(), request.SessionId)
	if errors.Is(err, ErrSessionNotFound) {
		respondWithErr(w, http.StatusNotFound, ERR_UNKNOWN_SESSION, ERR_SESSION_REMOVAL, err)
		return
	}
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_SESSION_REMOVAL, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]bool{"ok": true}); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}
	slog.Info("Scan ended", "session_id", request.SessionId)
}

func handleVerifyChip(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	request, err := decodeRequest[models.VerifyChipRequest](r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode verify chip request", err)
		return
	}

	session, ok := loadSession(state, w, r, request.SessionId)
	if !ok {
		return
	}
	snapshot := session.Snapshot()
	if snapshot.State != mrz.StateAccepted {
		respondWithErr(w, http.StatusConflict, ERR_NOT_ACCEPTED, ERR_NOT_ACCEPTED, fmt.Errorf("session %s is %s", request.SessionId, snapshot.State))
		return
	}

	dg1, err := hex.DecodeString(request.DG1)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to decode DG1 hex", err)
		return
	}

	mismatches, err := chip.MatchDG1(snapshot.Accepted, dg1)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_REQUEST, "failed to match DG1", err)
		return
	}

	response := models.VerifyChipResponse{
		Match:      len(mismatches) == 0,
		Mismatches: mismatches,
	}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}
	slog.Info("Chip verified", "session_id", request.SessionId, "match", response.Match)
}

// -----------------------------------------------------------------------------------

// loadSession restores the session from storage and writes the error response
// when that fails.
func loadSession(state *ServerState, w http.ResponseWriter, r *http.Request, sessionId string) (*mrz.Session, bool) {
	stored, err := state.sessionStorage.RetrieveSession(r.Context(), sessionId)
	if errors.Is(err, ErrSessionNotFound) {
		respondWithErr(w, http.StatusNotFound, ERR_UNKNOWN_SESSION, ERR_SESSION_RETRIEVAL, err)
		return nil, false
	}
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_SESSION_RETRIEVAL, err)
		return nil, false
	}
	return mrz.RestoreSession(stored), true
}

// decodeRequest decodes and validates the request body
func decodeRequest[T any](r *http.Request) (T, error) {
	var request T
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		slog.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		return request, fmt.Errorf("decode request body: %w", err)
	}
	if err := models.Validate(request); err != nil {
		slog.Warn("Request failed validation", "path", r.URL.Path, "error", err)
		return request, err
	}
	return request, nil
}

func GenerateSessionId() string {
	sessionId := make([]byte, 16)
	if _, err := rand.Read(sessionId); err != nil {
		slog.Error("failed to generate session ID", "error", err)
		return ""
	}
	return hex.EncodeToString(sessionId)
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(payload); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return nil
}
