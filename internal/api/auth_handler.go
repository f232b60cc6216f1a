package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"adminpanel/internal/devserver"
	"adminpanel/internal/dto/req"
	"adminpanel/internal/dto/resp"
	"adminpanel/internal/middleware"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DevCode is the one-time code accepted for two-factor logins and password
// resets on the development backend.
const DevCode = "123456"

type AuthHandler struct {
	tokens   *devserver.TokenIssuer
	accounts *devserver.Accounts

	mu       sync.Mutex
	verified map[string]bool
}

func NewAuthHandler(tokens *devserver.TokenIssuer, accounts *devserver.Accounts) *AuthHandler {
	return &AuthHandler{tokens: tokens, accounts: accounts, verified: make(map[string]bool)}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body req.LoginReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accounts.Authenticate(body.Email, body.Password)
	if err != nil {
		resp.Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if acc.TwoFactor {
		temp, err := h.tokens.TempToken(acc.User)
		if err != nil {
			resp.Fail(c, http.StatusInternalServerError, "Login failed")
			return
		}
		resp.Status(c, http.StatusOK, "Two-factor verification required", v1.LoginResult{
			TempToken:         temp,
			RequiresTwoFactor: true,
		})
		return
	}

	tokens, err := h.tokens.Issue(c.Request.Context(), acc.User)
	if err != nil {
		logger.Error("issue tokens failed", zap.Error(err))
		resp.Fail(c, http.StatusInternalServerError, "Login failed")
		return
	}
	resp.Status(c, http.StatusOK, "Login successful", tokens)
}

func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var body struct {
		TempToken string `json:"tempToken" binding:"required"`
		Code      string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.tokens.ParseTemp(body.TempToken)
	if err != nil {
		resp.Fail(c, http.StatusUnauthorized, "Verification session expired")
		return
	}
	if body.Code != DevCode {
		resp.Fail(c, http.StatusBadRequest, "Invalid verification code")
		return
	}
	u, ok := h.accounts.ByID(userID)
	if !ok {
		resp.Fail(c, http.StatusUnauthorized, "Verification session expired")
		return
	}

	tokens, err := h.tokens.Issue(c.Request.Context(), u)
	if err != nil {
		resp.Fail(c, http.StatusInternalServerError, "Verification failed")
		return
	}
	resp.Status(c, http.StatusOK, "Login successful", tokens)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var body req.RefreshReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.tokens.Refresh(c.Request.Context(), body.RefreshToken, h.accounts.ByID)
	if err != nil {
		if !errors.Is(err, devserver.ErrTokenInvalid) && !errors.Is(err, devserver.ErrSessionExpired) {
			logger.Error("refresh failed", zap.Error(err))
		}
		resp.Fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	resp.Status(c, http.StatusOK, "Token refreshed", v1.RefreshResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         tokens.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var body req.LogoutReq
	_ = c.ShouldBindJSON(&body)

	if err := h.tokens.Revoke(c.Request.Context(), body.RefreshToken); err != nil {
		logger.Error("logout failed", zap.Error(err))
	}
	resp.Status(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	op := middleware.GetOperatorInfo(c.Request.Context())
	u, ok := h.accounts.ByID(op.UserID)
	if !ok {
		resp.Fail(c, http.StatusNotFound, "Profile not found")
		return
	}
	resp.Native(c, http.StatusOK, u)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var body req.ProfileUpdateReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	op := middleware.GetOperatorInfo(c.Request.Context())
	u, ok := h.accounts.UpdateProfile(op.UserID, body)
	if !ok {
		resp.Fail(c, http.StatusNotFound, "Profile not found")
		return
	}
	resp.Native(c, http.StatusOK, u)
}

// ChangePassword ends every session of the caller on success.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var body struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.NewPassword != body.ConfirmPassword {
		resp.Fail(c, http.StatusBadRequest, "Passwords do not match")
		return
	}
	op := middleware.GetOperatorInfo(c.Request.Context())
	if _, err := h.accounts.Authenticate(op.Email, body.CurrentPassword); err != nil {
		resp.Fail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	h.accounts.SetPassword(op.Email, body.NewPassword)
	if err := h.tokens.RevokeUser(c.Request.Context(), op.UserID); err != nil {
		logger.Error("revoke after password change failed", zap.Error(err))
	}
	resp.Status(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	// Unknown addresses get the same answer.
	logger.Info("password reset requested", zap.String("email", body.Email), zap.Bool("known", h.accounts.Exists(body.Email)))
	resp.Status(c, http.StatusOK, "OTP sent to your email", nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.OTP != DevCode || !h.accounts.Exists(body.Email) {
		resp.Fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	h.mu.Lock()
	h.verified[strings.ToLower(body.Email)] = true
	h.mu.Unlock()
	resp.Status(c, http.StatusOK, "OTP verified", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body struct {
		Email       string `json:"email" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(body.Email)
	h.mu.Lock()
	ok := h.verified[email] && body.OTP == DevCode
	if ok {
		delete(h.verified, email)
	}
	h.mu.Unlock()
	if !ok || !h.accounts.SetPassword(email, body.NewPassword) {
		resp.Fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	resp.Status(c, http.StatusOK, "Password reset successfully", nil)
}
