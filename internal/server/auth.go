package server

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/driftvale/tilerealm/server/internal/config"
	"github.com/driftvale/tilerealm/server/internal/database"
	"github.com/driftvale/tilerealm/server/internal/logger"
)

// AuthAPI serves the HTTP account endpoints: register, login, and the
// durable player load/save path. The socket core never touches the
// database; everything durable flows through here.
type AuthAPI struct {
	db          *database.Database
	cfg         config.AuthConfig
	rateLimiter *LoginRateLimiter
	secret      []byte
	tokenTTL    time.Duration
	startMapID  string
	startX      float64
	startY      float64
}

// NewAuthAPI creates the auth handlers. An empty configured token
// secret gets a random one, which invalidates tokens on restart.
func NewAuthAPI(db *database.Database, cfg config.AuthConfig, rateLimiter *LoginRateLimiter, startMapID string, startX, startY float64) (*AuthAPI, error) {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		logger.Warning("No auth token secret configured, using a random one (tokens won't survive restart)")
	}

	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &AuthAPI{
		db:          db,
		cfg:         cfg,
		rateLimiter: rateLimiter,
		secret:      secret,
		tokenTTL:    ttl,
		startMapID:  startMapID,
		startX:      startX,
		startY:      startY,
	}, nil
}

// Routes registers the auth endpoints on the given mux.
func (a *AuthAPI) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", a.handleRegister)
	mux.HandleFunc("POST /api/login", a.handleLogin)
	mux.HandleFunc("GET /api/player", a.handleLoadPlayer)
	mux.HandleFunc("PUT /api/player", a.handleSavePlayer)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string           `json:"token"`
	Player *database.Player `json:"player"`
}

// handleRegister creates an account plus its player record.
func (a *AuthAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	minLen := a.cfg.MinPasswordLength
	if minLen <= 0 {
		minLen = 8
	}
	if len(req.Password) < minLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minLen))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.Username)
	}

	account, err := a.db.CreateAccount(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrAccountExists) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		logger.Error("Account creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	player, err := a.db.CreatePlayer(account.ID, name, a.startMapID, a.startX, a.startY)
	if err != nil {
		if errors.Is(err, database.ErrPlayerNameTaken) {
			writeError(w, http.StatusConflict, "player name already taken")
			return
		}
		logger.Error("Player creation failed", "account", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create player")
		return
	}

	logger.Info("Account registered", "username", account.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"player": player})
}

// handleLogin validates credentials and issues a signed bearer token.
// Failures feed the per-IP lockout.
func (a *AuthAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := getRealIP(r)

	if locked, remaining := a.rateLimiter.IsLocked(ip); locked {
		w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
		writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := a.db.ValidateLogin(req.Username, req.Password, ip)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrInvalidCredentials):
			a.rateLimiter.RecordFailure(ip)
			writeError(w, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, database.ErrAccountBanned):
			writeError(w, http.StatusForbidden, "account is banned")
		default:
			logger.Error("Login check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not verify credentials")
		}
		return
	}
	a.rateLimiter.RecordSuccess(ip)

	player, err := a.db.GetPlayerByAccount(account.ID)
	if err != nil && !errors.Is(err, database.ErrPlayerNotFound) {
		logger.Error("Player load failed", "account", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load player")
		return
	}

	token, err := a.issueToken(account)
	if err != nil {
		logger.Error("Token signing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	logger.Info("Login succeeded", "username", account.Username, "ip", ip)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Player: player})
}

// handleLoadPlayer returns the durable player record for the bearer token.
func (a *AuthAPI) handleLoadPlayer(w http.ResponseWriter, r *http.Request) {
	accountID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	player, err := a.db.GetPlayerByAccount(accountID)
	if err != nil {
		if errors.Is(err, database.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		logger.Error("Player load failed", "account", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load player")
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// handleSavePlayer applies a partial update to the player record.
func (a *AuthAPI) handleSavePlayer(w http.ResponseWriter, r *http.Request) {
	accountID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	var update database.PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.db.SavePlayer(accountID, update); err != nil {
		if errors.Is(err, database.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		logger.Error("Player save failed", "account", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save player")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// issueToken signs a bearer token for the account.
func (a *AuthAPI) issueToken(account *database.Account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(account.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// authenticate resolves the Authorization bearer token to an account id,
// writing the error response itself on failure.
func (a *AuthAPI) authenticate(w http.ResponseWriter, r *http.Request) (int64, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return 0, false
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return 0, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token claims")
		return 0, false
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token subject")
		return 0, false
	}
	return accountID, true
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("Response encoding failed", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// getRealIP extracts the real client IP from an HTTP request. It checks
// X-Forwarded-For first (for reverse proxy setups), then falls back to
// the direct remote address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	return extractIP(r.RemoteAddr)
}
