package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	admindomain "echo-memory/backend/internal/admin/domain"
	"echo-memory/backend/internal/security"
	userdomain "echo-memory/backend/internal/user/domain"
)

type fakeUserRepo struct {
	byEmail    map[string]*userdomain.User
	nextID     int64
	lastLogins map[int64]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*userdomain.User{}, lastLogins: map[int64]time.Time{}}
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *userdomain.User) error {
	f.nextID++
	u.ID = f.nextID
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

type fakeAdminRepo struct {
	byUsername map[string]*admindomain.Admin
	lastLogins map[int64]time.Time
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byUsername: map[string]*admindomain.Admin{}, lastLogins: map[int64]time.Time{}}
}

func (f *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*admindomain.Admin, error) {
	return f.byUsername[username], nil
}

func (f *fakeAdminRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

func newTestService(users *fakeUserRepo, admins *fakeAdminRepo) *AuthService {
	return NewAuthService(users, admins, security.NewTestHasher(), security.NewTestTokenProvider(), time.Hour, 2)
}

var uidPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestRegister(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(users, newFakeAdminRepo())

	uid, err := svc.Register(context.Background(), "Alice@Example.COM", "correct-horse", "Alice", "hi")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !uidPattern.MatchString(uid) {
		t.Errorf("uid = %q, want 32 hex chars", uid)
	}

	u := users.byEmail["alice@example.com"]
	if u == nil {
		t.Fatal("user not stored under lowercased email")
	}
	if u.LanguageCode != "hi" {
		t.Errorf("language = %q", u.LanguageCode)
	}
	if !u.IsActive {
		t.Error("new user must be active")
	}
	if u.PasswordHash == "correct-horse" {
		t.Fatal("password stored in clear")
	}
	if err := security.NewTestHasher().Compare(u.PasswordHash, []byte("correct-horse")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeAdminRepo())

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
	}{
		{"empty email", "", "longenough", "Alice"},
		{"bad email", "not-an-email", "longenough", "Alice"},
		{"short password", "a@b.co", "seven77", "Alice"},
		{"missing name", "a@b.co", "longenough", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.fullName, "en")
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRegisterUnsupportedLanguageFallsBack(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(users, newFakeAdminRepo())

	if _, err := svc.Register(context.Background(), "a@b.co", "longenough", "Alice", "fr"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := users.byEmail["a@b.co"].LanguageCode; got != DefaultLanguage {
		t.Errorf("language = %q, want %q", got, DefaultLanguage)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(users, newFakeAdminRepo())

	if _, err := svc.Register(context.Background(), "a@b.co", "longenough", "Alice", "en"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "a@b.co", "otherpassword", "Bob", "en")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestLoginFlow(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(users, newFakeAdminRepo())

	uid, err := svc.Register(context.Background(), "a@b.co", "longenough", "Alice", "ta")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := svc.Login(context.Background(), "a@b.co", "longenough")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("empty token")
	}
	if result.User.UID != uid {
		t.Errorf("uid = %q, want %q", result.User.UID, uid)
	}

	claims, err := security.NewTestTokenProvider().Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := map[string]string{"uid": uid, "email": "a@b.co", "name": "Alice", "lang": "ta"}
	for k, v := range want {
		if claims.String(k) != v {
			t.Errorf("claim %s = %q, want %q", k, claims.String(k), v)
		}
	}
	if claims.IsAdmin() {
		t.Error("user token must not carry the admin flag")
	}
	if _, ok := users.lastLogins[result.User.ID]; !ok {
		t.Error("last login not stamped")
	}
}

func TestLoginFailures(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(users, newFakeAdminRepo())

	if _, err := svc.Register(context.Background(), "a@b.co", "longenough", "Alice", "en"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "a@b.co", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@b.co", "longenough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty input: err = %v, want ErrInvalidArgument", err)
	}

	users.byEmail["a@b.co"].IsActive = false
	if _, err := svc.Login(context.Background(), "a@b.co", "longenough"); !errors.Is(err, ErrAccountSuspended) {
		t.Errorf("suspended: err = %v, want ErrAccountSuspended", err)
	}
}

func TestAdminLogin(t *testing.T) {
	admins := newFakeAdminRepo()
	hash, err := security.NewTestHasher().Hash([]byte("hunter2hunter2"))
	if err != nil {
		t.Fatal(err)
	}
	admins.byUsername["admin"] = &admindomain.Admin{
		ID:           7,
		Username:     "admin",
		PasswordHash: hash,
		Role:         admindomain.RoleSuperadmin,
	}
	svc := newTestService(newFakeUserRepo(), admins)

	result, err := svc.AdminLogin(context.Background(), "admin", "hunter2hunter2")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if result.Role != admindomain.RoleSuperadmin {
		t.Errorf("role = %q", result.Role)
	}

	claims, err := security.NewTestTokenProvider().Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject() != "admin_7" {
		t.Errorf("uid claim = %q, want admin_7", claims.Subject())
	}
	if !claims.IsAdmin() {
		t.Error("admin token must carry the admin flag")
	}
	if claims.String("username") != "admin" {
		t.Errorf("username claim = %q", claims.String("username"))
	}

	if _, err := svc.AdminLogin(context.Background(), "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.AdminLogin(context.Background(), "ghost", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown admin: err = %v, want ErrInvalidCredentials", err)
	}
}
