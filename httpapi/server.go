package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	clutchcall "github.com/cjlopez27/ClutchCall"
)

// Config controls the HTTP surface. Secure should only be disabled for local
// development; production always runs with it on.
type Config struct {
	Secure bool
}

// Server exposes the session gateway over HTTP. It translates status codes
// and cookies only; every authentication decision belongs to the gateway.
type Server struct {
	gateway *clutchcall.Gateway
	config  Config
	mux     *http.ServeMux
}

func NewServer(gateway *clutchcall.Gateway, cfg Config) *Server {
	s := &Server{
		gateway: gateway,
		config:  cfg,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /mfa/setup", s.handleMFASetup)
	s.mux.HandleFunc("POST /mfa/validate", s.handleMFAValidate)
	s.mux.HandleFunc("GET /validate", s.handleValidate)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type credentialsRequest struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}

type codeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.gateway.Register(r.Context(), req.Email, req.Pass); err != nil {
		s.writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.gateway.Login(r.Context(), req.Email, req.Pass)
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}

	s.setCookie(w, tempCookie, res.TempToken)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "mfa": res.MFAConfigured})
}

func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(tempCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no token provided")
		return
	}

	img, err := s.gateway.SetupMFA(r.Context(), cookie.Value)
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) handleMFAValidate(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing mfa code")
		return
	}

	cookie, err := r.Cookie(tempCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no token provided")
		return
	}

	access, err := s.gateway.ValidateMFA(r.Context(), cookie.Value, req.Code)
	if err != nil {
		// a failed attempt leaves the temporary cookie intact for retry
		s.writeGatewayError(w, err)
		return
	}

	s.setCookie(w, accessCookie, access)
	s.clearCookie(w, tempCookie)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "mfa": false})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(accessCookie)
	if err != nil {
		// "never attempted" is distinct from "attempted and rejected"
		writeError(w, http.StatusBadRequest, "no token provided")
		return
	}

	if _, err := s.gateway.ValidateAccess(r.Context(), cookie.Value); err != nil {
		s.clearCookie(w, accessCookie)
		s.writeGatewayError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearCookie(w, accessCookie)
	s.clearCookie(w, tempCookie)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

// writeGatewayError maps gateway sentinels onto the endpoint status table.
// Every authentication failure shares one generic body; backend detail stays
// in the audit log.
func (s *Server) writeGatewayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clutchcall.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "missing email or password")
	case errors.Is(err, clutchcall.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
	case errors.Is(err, clutchcall.ErrMissingCode):
		writeError(w, http.StatusBadRequest, "missing mfa code")
	case errors.Is(err, clutchcall.ErrMFAAlreadyEnabled):
		writeError(w, http.StatusBadRequest, "mfa already enabled")
	case errors.Is(err, clutchcall.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, clutchcall.ErrUnauthorized),
		errors.Is(err, clutchcall.ErrInvalidMFACode):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, clutchcall.ErrEmailExists):
		writeError(w, http.StatusConflict, "email already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
