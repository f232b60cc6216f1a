package resource

import (
	"context"
	"encoding/json"

	"adminpanel/client"
	"adminpanel/internal/service"
	v1 "adminpanel/pkg/api/v1"
)

// PasswordForms backs the password and OTP screens. Errors are returned as
// inline messages; nothing is toasted. An empty string means success.
type PasswordForms struct {
	auth *service.AuthService
}

func NewPasswordForms(auth *service.AuthService) *PasswordForms {
	return &PasswordForms{auth: auth}
}

func (f *PasswordForms) ChangePassword(ctx context.Context, req service.ChangePasswordRequest) string {
	if req.NewPassword != req.ConfirmPassword {
		return "Passwords do not match"
	}
	return inline(f.auth.ChangePassword(ctx, req))
}

func (f *PasswordForms) ForgotPassword(ctx context.Context, email string) string {
	return inline(f.auth.ForgotPassword(ctx, email))
}

func (f *PasswordForms) VerifyOTP(ctx context.Context, email, otp string) string {
	return inline(f.auth.VerifyOTP(ctx, email, otp))
}

func (f *PasswordForms) ResetPassword(ctx context.Context, req service.ResetPasswordRequest) string {
	return inline(f.auth.ResetPassword(ctx, req))
}

func inline(res *v1.Response[json.RawMessage], err error) string {
	if err != nil {
		return client.Message(err)
	}
	if !res.Success {
		if res.Message != "" {
			return res.Message
		}
		return "Request failed. Please try again."
	}
	return ""
}
