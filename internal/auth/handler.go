package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the HTTP endpoints of the auth subsystem.
type Handler struct {
	svc       *Service
	guard     CsrfGuard
	transport SessionTransport
	logger    *zap.SugaredLogger
}

func NewHandler(svc *Service, guard CsrfGuard, transport SessionTransport, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, guard: guard, transport: transport, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is already taken"})
		default:
			h.internalError(w, "register failed", err)
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No user found with this email"})
		case errors.Is(err, ErrIncorrectPassword):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Incorrect password"})
		default:
			h.internalError(w, "login failed", err)
		}
		return
	}
	h.transport.SetTokenCookie(w, token)
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout clears the session cookie. Logging out twice is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.transport.ClearTokenCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Signout success"})
}

// CurrentUser confirms the authenticated user still exists. The signin gate
// upstream already verified the token.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	if err := h.svc.CurrentUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		h.internalError(w, "current user lookup failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CsrfToken seeds the session's CSRF secret if needed, derives a fresh token
// from it and hands both to the client: the secret stays httpOnly, the token
// goes out script-readable and in the JSON body.
func (h *Handler) CsrfToken(w http.ResponseWriter, r *http.Request) {
	secret := h.transport.ReadCsrfSecretCookie(r)
	if secret == "" {
		var err error
		secret, err = h.guard.NewSecret()
		if err != nil {
			h.internalError(w, "csrf secret generation failed", err)
			return
		}
		h.transport.SetCsrfSecretCookie(w, secret)
	}
	token, err := h.guard.DeriveToken(secret)
	if err != nil {
		h.internalError(w, "csrf token derivation failed", err)
		return
	}
	h.transport.SetCsrfTokenCookie(w, token)
	h.writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		// includes mail delivery failure, surfaced rather than swallowed
		h.internalError(w, "forgot password failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent. Check your inbox."})
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
	Code        string `json:"code"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.NewPassword, req.Code); err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs})
		case errors.Is(err, ErrResetCodeInvalid):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid or expired reset code"})
		default:
			h.internalError(w, "reset password failed", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// internalError logs the cause server-side and withholds detail from the
// client.
func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Errorw(msg, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
