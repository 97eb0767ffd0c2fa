package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/middleware"
	"github.com/businesspro/auth-api/internal/models"
	"github.com/businesspro/auth-api/internal/service"
)

type AuthHandlers struct {
	authService *service.AuthService
	logger      *logrus.Logger
}

func NewAuthHandlers(authService *service.AuthService, logger *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Company         string `json:"company"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Company   *string `json:"company"`
}

type otpIssuedData struct {
	Email     string `json:"email"`
	OTPSent   bool   `json:"otpSent"`
	ExpiresIn int    `json:"expiresIn"`
}

type sessionData struct {
	User  *models.Account `json:"user"`
	Token string          `json:"token"`
}

type userData struct {
	User *models.Account `json:"user"`
}

func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrors := validateSignup(&req); len(fieldErrors) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	result, err := h.authService.Signup(r.Context(), service.SignupParams{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		Company:      strings.TrimSpace(req.Company),
		Password:     req.Password,
		AgreeToTerms: req.AgreeToTerms,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully. Please check your email for the verification code.",
		Data: otpIssuedData{
			Email:     result.Email,
			OTPSent:   result.OTPSent,
			ExpiresIn: result.ExpiresIn,
		},
	})
}

func (h *AuthHandlers) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrors := validateSignin(&req); len(fieldErrors) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	account, token, err := h.authService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Signin successful",
		Data:    sessionData{User: account, Token: token},
	})
}

func (h *AuthHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrors := validateVerifyOTP(&req); len(fieldErrors) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	account, token, err := h.authService.VerifyOTP(r.Context(), req.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Email verified successfully",
		Data:    sessionData{User: account, Token: token},
	})
}

func (h *AuthHandlers) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if !isValidEmail(req.Email) {
		h.respondError(w, http.StatusBadRequest, "Validation failed", []FieldError{
			{Field: "email", Message: "Please provide a valid email address"},
		})
		return
	}

	result, err := h.authService.ResendOTP(r.Context(), req.Email)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "New verification code sent to your email",
		Data: otpIssuedData{
			Email:     result.Email,
			OTPSent:   result.OTPSent,
			ExpiresIn: result.ExpiresIn,
		},
	})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Access denied. Invalid token.", nil)
		return
	}

	account, err := h.authService.GetAccount(r.Context(), accountID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "",
		Data:    userData{User: account},
	})
}

func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Access denied. Invalid token.", nil)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrors := validateProfileUpdate(&req); len(fieldErrors) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	account, err := h.authService.UpdateProfile(r.Context(), accountID, models.ProfileUpdate{
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
		Company:   trimmed(req.Company),
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    userData{User: account},
	})
}

// ForgotPassword is deliberately unimplemented.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusNotImplemented, "Forgot password functionality not implemented yet", nil)
}

// ResetPassword is deliberately unimplemented.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusNotImplemented, "Reset password functionality not implemented yet", nil)
}

func (h *AuthHandlers) respondServiceError(w http.ResponseWriter, err error) {
	var invalidCode *service.InvalidCodeError
	var cooldown *service.CooldownError

	switch {
	case errors.Is(err, service.ErrConflict):
		h.respondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrRateLimited):
		h.respondError(w, http.StatusTooManyRequests, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrOTPNotFound),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrMaxAttempts),
		errors.Is(err, service.ErrAlreadyVerified):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &invalidCode):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &cooldown):
		h.respondError(w, http.StatusTooManyRequests, err.Error(), nil)
	case errors.Is(err, service.ErrEmailDelivery):
		h.respondError(w, http.StatusInternalServerError, err.Error(), nil)
	default:
		h.logger.WithError(err).Error("Unhandled service error")
		h.respondError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func (h *AuthHandlers) respondJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *AuthHandlers) respondError(w http.ResponseWriter, status int, message string, fieldErrors []FieldError) {
	h.respondJSON(w, status, Response{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
