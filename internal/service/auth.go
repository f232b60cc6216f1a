package service

import (
	"context"
	"encoding/json"
	"errors"

	"adminpanel/client"
	"adminpanel/internal/endpoints"
	"adminpanel/internal/session"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

var ErrNoTempToken = errors.New("no pending two-factor login")

// AuthAPI extends API with the session-side operations of the client.
type AuthAPI interface {
	API
	Session() *session.Session
	MockEnabled() bool
	MockLogin(email, password string) *v1.Response[v1.LoginResult]
	Logout(ctx context.Context) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyTwoFactorRequest struct {
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

type ProfileUpdate struct {
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type AuthService struct {
	api AuthAPI
}

func NewAuthService(api AuthAPI) *AuthService {
	return &AuthService{api: api}
}

// Login signs in and persists the credentials. When the backend asks for a
// second factor only the temp token is stored. An unsuccessful envelope is
// returned without error and leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*v1.Response[v1.LoginResult], error) {
	var (
		res *v1.Response[v1.LoginResult]
		err error
	)
	if s.api.MockEnabled() {
		res = s.api.MockLogin(email, password)
	} else {
		res, err = client.Decode[v1.LoginResult](s.api.Post(ctx, endpoints.AuthLogin, LoginRequest{Email: email, Password: password}))
		if err != nil {
			return nil, err
		}
	}
	if !res.Success {
		return res, nil
	}

	sess := s.api.Session()
	if res.Data.RequiresTwoFactor && res.Data.TempToken != "" {
		if err := sess.SetTempToken(ctx, res.Data.TempToken); err != nil {
			return nil, err
		}
		return res, nil
	}
	if res.Data.AccessToken != "" {
		if err := sess.SaveLogin(ctx, &res.Data); err != nil {
			return nil, err
		}
		logger.Info("admin signed in", zap.String("email", email))
	}
	return res, nil
}

// VerifyTwoFactor completes a login that returned a temp token.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, code string) (*v1.Response[v1.LoginResult], error) {
	sess := s.api.Session()
	temp := sess.TempToken(ctx)
	if temp == "" {
		return nil, ErrNoTempToken
	}
	res, err := client.Decode[v1.LoginResult](s.api.Post(ctx, endpoints.AuthVerify2FA, VerifyTwoFactorRequest{TempToken: temp, Code: code}))
	if err != nil {
		return nil, err
	}
	if res.Success && res.Data.AccessToken != "" {
		if err := sess.SaveLogin(ctx, &res.Data); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Logout tells the backend and then clears local credentials. A failed
// network call does not keep the session alive.
func (s *AuthService) Logout(ctx context.Context) error {
	body := map[string]string{"refreshToken": s.api.Session().RefreshToken(ctx)}
	if _, err := s.api.Post(ctx, endpoints.AuthLogout, body); err != nil {
		logger.Warn("logout request failed", zap.Error(err))
	}
	return s.api.Logout(ctx)
}

func (s *AuthService) Profile(ctx context.Context) (*v1.Response[v1.User], error) {
	res, err := client.Decode[v1.User](s.api.Get(ctx, endpoints.Profile))
	if err != nil {
		return nil, err
	}
	s.storeUser(ctx, res)
	return res, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*v1.Response[v1.User], error) {
	res, err := client.Decode[v1.User](s.api.Put(ctx, endpoints.ProfileUpdate, upd))
	if err != nil {
		return nil, err
	}
	s.storeUser(ctx, res)
	return res, nil
}

func (s *AuthService) storeUser(ctx context.Context, res *v1.Response[v1.User]) {
	if !res.Success || res.Data.ID == "" {
		return
	}
	if err := s.api.Session().SetUser(ctx, &res.Data); err != nil {
		logger.Warn("failed to store profile", zap.Error(err))
	}
}

// ChangePassword forces a fresh login: on success the session is cleared and
// the password-changed flag is left for the next start.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*v1.Response[json.RawMessage], error) {
	res, err := s.api.Post(ctx, endpoints.PasswordChange, req)
	if err != nil {
		return nil, err
	}
	if res.Success {
		sess := s.api.Session()
		if err := sess.MarkPasswordChanged(ctx); err != nil {
			logger.Warn("failed to flag password change", zap.Error(err))
		}
		if err := sess.Clear(ctx); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*v1.Response[json.RawMessage], error) {
	return s.api.Post(ctx, endpoints.PasswordForgot, map[string]string{"email": email})
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*v1.Response[json.RawMessage], error) {
	return s.api.Post(ctx, endpoints.PasswordVerify, map[string]string{"email": email, "otp": otp})
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*v1.Response[json.RawMessage], error) {
	return s.api.Post(ctx, endpoints.PasswordReset, req)
}
