package devserver

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"adminpanel/internal/dto/req"
	"adminpanel/internal/dto/resp"
	v1 "adminpanel/pkg/api/v1"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("not found")
)

// Account is a login identity.
type Account struct {
	User      v1.User
	Password  string
	TwoFactor bool
}

// Accounts holds login identities keyed by email.
type Accounts struct {
	mu      sync.RWMutex
	byEmail map[string]*Account
}

func NewAccounts(seed ...Account) *Accounts {
	a := &Accounts{byEmail: make(map[string]*Account)}
	for i := range seed {
		acc := seed[i]
		a.byEmail[strings.ToLower(acc.User.Email)] = &acc
	}
	return a
}

// Authenticate returns the account when email and password match.
func (a *Accounts) Authenticate(email, password string) (Account, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byEmail[strings.ToLower(email)]
	if !ok || acc.Password != password {
		return Account{}, ErrInvalidCredentials
	}
	return *acc, nil
}

func (a *Accounts) ByID(id string) (v1.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, acc := range a.byEmail {
		if acc.User.ID == id {
			return acc.User, true
		}
	}
	return v1.User{}, false
}

func (a *Accounts) Exists(email string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.byEmail[strings.ToLower(email)]
	return ok
}

// UpdateProfile applies non-empty fields.
func (a *Accounts) UpdateProfile(id string, upd req.ProfileUpdateReq) (v1.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.byEmail {
		if acc.User.ID != id {
			continue
		}
		if upd.Name != "" {
			acc.User.Name = upd.Name
		}
		if upd.Phone != "" {
			acc.User.Phone = upd.Phone
		}
		if upd.Address != "" {
			acc.User.Address = upd.Address
		}
		return acc.User, true
	}
	return v1.User{}, false
}

// SetPassword replaces the password of the account with the given email.
func (a *Accounts) SetPassword(email, password string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.byEmail[strings.ToLower(email)]
	if !ok {
		return false
	}
	acc.Password = password
	return true
}

// Admins is the in-memory admin table behind /admins.
type Admins struct {
	mu     sync.RWMutex
	admins []v1.Admin
	now    func() time.Time
}

func NewAdmins(seed ...v1.Admin) *Admins {
	return &Admins{admins: slices.Clone(seed), now: time.Now}
}

// List filters by search (name or email) and status, newest first, then
// slices out the requested page.
func (s *Admins) List(q req.ListQuery) ([]v1.Admin, v1.Pagination) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	search := strings.ToLower(q.Search)

	s.mu.RLock()
	matched := make([]v1.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) && !strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		matched = append(matched, a)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(x, y v1.Admin) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})

	from := min((page-1)*limit, len(matched))
	to := min(from+limit, len(matched))
	return matched[from:to], resp.NewPagination(page, limit, len(matched))
}

func (s *Admins) Get(id string) (v1.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return v1.Admin{}, ErrNotFound
}

func (s *Admins) Create(r req.CreateAdminReq) (v1.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, r.Email) {
			return v1.Admin{}, ErrEmailTaken
		}
	}
	role := r.Role
	if role == "" {
		role = "admin"
	}
	now := s.now()
	a := v1.Admin{
		ID:        uuid.New().String(),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.admins = append(s.admins, a)
	return a, nil
}

func (s *Admins) mutate(id string, fn func(*v1.Admin)) (v1.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.admins {
		if s.admins[i].ID == id {
			fn(&s.admins[i])
			s.admins[i].UpdatedAt = s.now()
			return s.admins[i], nil
		}
	}
	return v1.Admin{}, ErrNotFound
}

func (s *Admins) Update(id string, r req.UpdateAdminReq) (v1.Admin, error) {
	return s.mutate(id, func(a *v1.Admin) {
		if r.Name != "" {
			a.Name = r.Name
		}
		if r.Phone != "" {
			a.Phone = r.Phone
		}
		if r.Role != "" {
			a.Role = r.Role
		}
	})
}

// ToggleStatus flips between active and inactive.
func (s *Admins) ToggleStatus(id string) (v1.Admin, error) {
	return s.mutate(id, func(a *v1.Admin) {
		if a.Status == "active" {
			a.Status = "inactive"
		} else {
			a.Status = "active"
		}
	})
}

func (s *Admins) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.admins, func(a v1.Admin) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.admins = slices.Delete(s.admins, i, i+1)
	return nil
}

func (s *Admins) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins)
}
