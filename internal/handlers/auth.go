package handlers

import (
	"errors"
	"net/http"

	"esiapp/internal/dto"
	"esiapp/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles register, login and the OTP verification flow.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates an unverified account and emails a 6-digit OTP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Registration fields"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name, email and password are required"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User already exists with this email"})
		default:
			serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered. OTP sent for verification.",
		"data":    gin.H{"userId": user.ID},
	})
}

// VerifyOTP godoc
// @Summary      Verify the OTP challenge
// @Description  Consumes the outstanding code; on first success the account
// @Description  becomes verified and a session token is returned.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyOTPRequest  true  "User ID and code"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, token, err := h.authSvc.VerifyOTP(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		case errors.Is(err, service.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or expired OTP"})
		default:
			serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    dto.UserResponse{ID: user.ID, Name: user.Name, Phone: user.Phone, Email: user.Email},
	})
}

// Login godoc
// @Summary      Login
// @Description  Issues a session token for verified accounts. An unverified
// @Description  account gets a fresh OTP and a 401 carrying its user ID.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide email and password"})
		return
	}
	user, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var notVerified *service.NotVerifiedError
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide email and password"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		case errors.As(err, &notVerified):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Account not verified",
				"data":    gin.H{"userId": notVerified.UserID},
			})
		default:
			serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    dto.UserResponse{ID: user.ID, Name: user.Name, Phone: user.Phone, Email: user.Email},
	})
}

// ResendOTP godoc
// @Summary      Resend the OTP
// @Description  Replaces any outstanding code with a fresh one and emails it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResendOTPRequest  true  "User ID"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := h.authSvc.ResendOTP(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP resent for verification"})
}
