package devserver

import (
	"fmt"
	"time"

	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

// Development credentials.
const (
	SuperAdminEmail    = constraints.DevAdminEmail
	SuperAdminPassword = constraints.DevAdminPassword
	TwoFactorEmail     = "secure@example.com"
	TwoFactorPassword  = "secure123"
)

func DefaultAccounts() *Accounts {
	return NewAccounts(
		Account{
			User:     v1.User{ID: "1", Username: "admin", Email: SuperAdminEmail, Role: "superadmin", Name: "Super Admin"},
			Password: SuperAdminPassword,
		},
		Account{
			User:      v1.User{ID: "2", Username: "secure", Email: TwoFactorEmail, Role: "admin", Name: "Secure Admin"},
			Password:  TwoFactorPassword,
			TwoFactor: true,
		},
	)
}

// DefaultAdmins seeds n admins created one hour apart, newest last.
func DefaultAdmins(n int, now time.Time) *Admins {
	seed := make([]v1.Admin, 0, n)
	for i := range n {
		created := now.Add(-time.Duration(n-i) * time.Hour)
		status := "active"
		if i%4 == 3 {
			status = "inactive"
		}
		seed = append(seed, v1.Admin{
			ID:        fmt.Sprintf("seed-%02d", i+1),
			Name:      fmt.Sprintf("Admin %02d", i+1),
			Email:     fmt.Sprintf("admin%02d@example.com", i+1),
			Role:      "admin",
			Status:    status,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return NewAdmins(seed...)
}
