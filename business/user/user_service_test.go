package user

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"misikaMarket/pkg/utils"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user")
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.NewNotFoundError("user")
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u := f.users[id]
	u.Password = hash
	f.users[id] = u
	return nil
}

type fakeOTPRepo struct {
	rows          map[string]domain.OTPVerification
	beforeConsume func()
}

func (f *fakeOTPRepo) Upsert(ctx context.Context, otp *domain.OTPVerification) error {
	f.rows[otp.Email+"|"+otp.Purpose] = *otp
	return nil
}

func (f *fakeOTPRepo) Find(ctx context.Context, email, purpose string) (domain.OTPVerification, error) {
	o, ok := f.rows[email+"|"+purpose]
	if !ok {
		return domain.OTPVerification{}, domain.NewNotFoundError("otp")
	}
	return o, nil
}

func (f *fakeOTPRepo) Consume(ctx context.Context, email, purpose, code string, now time.Time) error {
	if f.beforeConsume != nil {
		f.beforeConsume()
	}
	key := email + "|" + purpose
	o, ok := f.rows[key]
	if !ok || o.Code != code || !o.ExpiresAt.After(now) {
		return domain.ErrInvalidOTP
	}
	delete(f.rows, key)
	return nil
}

type fakeOrders struct{}

func (fakeOrders) Count(ctx context.Context, userID *uuid.UUID, status string) (int64, error) {
	return 3, nil
}

func (fakeOrders) Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.Order, error) {
	return []domain.Order{{OrderNumber: "ORD1"}}, nil
}

type fakeCart struct{}

func (fakeCart) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 4, nil
}

type fakeResolver struct {
	repo *fakeUserRepo
}

func (f fakeResolver) Resolve(ctx context.Context, provider, subject string) (domain.Principal, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return domain.Principal{}, domain.NewUnauthenticatedError("user not found")
	}
	u, err := f.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Principal{}, domain.NewUnauthenticatedError("user not found")
	}
	return domain.Principal{Provider: domain.ProviderAccount, Subject: u.ID.String(), AccountID: u.ID}, nil
}

type fakeRevocations struct {
	revoked map[string]time.Duration
}

func (f *fakeRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = ttl
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (f *fakeNotifier) Enqueue(n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc         *userService
	users       *fakeUserRepo
	otps        *fakeOTPRepo
	notifier    *fakeNotifier
	revocations *fakeRevocations
	tokens      *utils.JWTManager
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{rows: map[string]domain.OTPVerification{}}
	notifier := &fakeNotifier{}
	revocations := &fakeRevocations{revoked: map[string]time.Duration{}}
	tokens := utils.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	svc := NewUserService(users, otps, fakeOrders{}, fakeCart{}, tokens, fakeResolver{repo: users},
		revocations, notifier, fakeTx{}, validator.New())

	return &fixture{svc: svc, users: users, otps: otps, notifier: notifier, revocations: revocations, tokens: tokens}
}

func (f *fixture) register(t *testing.T, email, password string) AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: password, FirstName: "Asha"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return res
}

func TestRegister(t *testing.T) {
	f := newFixture()
	res := f.register(t, "  Asha@Example.com ", "secret123")

	if res.User == nil || res.User.Email != "asha@example.com" || res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if res.User.Password == "secret123" || !utils.CheckPassword("secret123", res.User.Password) {
		t.Fatal("password must be stored hashed")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Kind != domain.NotifyWelcome {
		t.Fatalf("expected welcome email, got %+v", f.notifier.sent)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	f := newFixture()
	f.register(t, "asha@example.com", "secret123")

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "asha@example.com", Password: "secret123"})
	if domain.KindOf(err) != domain.KindDuplicate {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), RegisterInput{Username: "asha", Email: "one@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register with username: %v", err)
	}
	_, err = f.svc.Register(context.Background(), RegisterInput{Username: "asha", Email: "two@example.com", Password: "secret123"})
	if domain.KindOf(err) != domain.KindDuplicate {
		t.Fatalf("expected duplicate username, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()

	tests := []RegisterInput{
		{Email: "not-an-email", Password: "secret123"},
		{Email: "a@example.com", Password: "123"},
	}
	for _, in := range tests {
		if _, err := f.svc.Register(context.Background(), in); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("%+v: expected validation error, got %v", in, err)
		}
	}
	if len(f.users.users) != 0 {
		t.Fatal("invalid input must not create users")
	}
}

func TestLoginIsGeneric(t *testing.T) {
	f := newFixture()
	f.register(t, "asha@example.com", "secret123")

	_, errUnknown := f.svc.Login(context.Background(), "nobody@example.com", "secret123")
	_, errWrong := f.svc.Login(context.Background(), "asha@example.com", "wrong-pass")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected generic credentials error, got %v and %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("responses differ: %q vs %q", errUnknown, errWrong)
	}

	res, err := f.svc.Login(context.Background(), "ASHA@example.com", "secret123")
	if err != nil || res.AccessToken == "" {
		t.Fatalf("login: %+v %v", res, err)
	}
}

func TestLoginSuspended(t *testing.T) {
	f := newFixture()
	res := f.register(t, "asha@example.com", "secret123")

	u := f.users.users[res.User.ID]
	u.Status = domain.UserStatusSuspended
	f.users.users[u.ID] = u

	if _, err := f.svc.Login(context.Background(), "asha@example.com", "secret123"); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected suspended, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture()
	res := f.register(t, "asha@example.com", "secret123")

	out, err := f.svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := f.tokens.Verify(out.AccessToken, utils.TokenKindAccess)
	if err != nil || claims.Subject != res.User.ID.String() || claims.Provider != domain.ProviderAccount {
		t.Fatalf("refreshed token: %+v %v", claims, err)
	}

	if _, err := f.svc.Refresh(context.Background(), res.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	f := newFixture()
	res := f.register(t, "asha@example.com", "secret123")

	access, _ := f.tokens.Verify(res.AccessToken, utils.TokenKindAccess)
	refresh, _ := f.tokens.Verify(res.RefreshToken, utils.TokenKindRefresh)

	principal := domain.Principal{
		Provider:  domain.ProviderAccount,
		Subject:   res.User.ID.String(),
		TokenID:   access.ID,
		ExpiresAt: access.ExpiresAt.Time,
	}

	if err := f.svc.Logout(context.Background(), principal, res.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, ok := f.revocations.revoked[access.ID]; !ok {
		t.Fatal("access token not revoked")
	}
	if ttl, ok := f.revocations.revoked[refresh.ID]; !ok || ttl <= 15*time.Minute {
		t.Fatalf("refresh token not revoked until expiry: %v %v", ok, ttl)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newFixture()

	if err := f.svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(f.otps.rows) != 0 || len(f.notifier.sent) != 0 {
		t.Fatal("unknown email must not create a code or send mail")
	}
}

func TestResetPassword(t *testing.T) {
	f := newFixture()
	res := f.register(t, "asha@example.com", "secret123")
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, "asha@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	otp := f.otps.rows["asha@example.com|"+domain.OTPPurposeAccountReset]

	if err := f.svc.ResetPassword(ctx, "asha@example.com", "000000x", "newpass1"); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected invalid otp, got %v", err)
	}

	if err := f.svc.ResetPassword(ctx, "asha@example.com", otp.Code, "newpass1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if !utils.CheckPassword("newpass1", f.users.users[res.User.ID].Password) {
		t.Fatal("password not updated")
	}
	if len(f.otps.rows) != 0 {
		t.Fatal("code must be consumed")
	}

	if err := f.svc.ResetPassword(ctx, "asha@example.com", otp.Code, "again123"); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("reused code must fail, got %v", err)
	}
}

func TestResetPasswordCodeUsedConcurrently(t *testing.T) {
	f := newFixture()
	res := f.register(t, "asha@example.com", "secret123")
	ctx := context.Background()

	_ = f.svc.ForgotPassword(ctx, "asha@example.com")
	key := "asha@example.com|" + domain.OTPPurposeAccountReset
	otp := f.otps.rows[key]
	before := f.users.users[res.User.ID].Password

	// Another reset with the same code commits after this one has read it.
	f.otps.beforeConsume = func() { delete(f.otps.rows, key) }

	if err := f.svc.ResetPassword(ctx, "asha@example.com", otp.Code, "newpass1"); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected invalid otp, got %v", err)
	}
	if f.users.users[res.User.ID].Password != before {
		t.Fatal("password must not change when the code was already used")
	}
}

func TestResetPasswordExpired(t *testing.T) {
	f := newFixture()
	f.register(t, "asha@example.com", "secret123")
	ctx := context.Background()

	_ = f.svc.ForgotPassword(ctx, "asha@example.com")
	otp := f.otps.rows["asha@example.com|"+domain.OTPPurposeAccountReset]

	f.svc.now = func() time.Time { return time.Now().Add(domain.OTPTTL + time.Second) }

	if err := f.svc.ResetPassword(ctx, "asha@example.com", otp.Code, "newpass1"); !errors.Is(err, domain.ErrExpiredOTP) {
		t.Fatalf("expected expired otp, got %v", err)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	f := newFixture()
	a := f.register(t, "a@example.com", "secret123")
	f.register(t, "b@example.com", "secret123")

	taken := "b@example.com"
	if _, err := f.svc.UpdateProfile(context.Background(), a.User.ID, ProfileInput{Email: &taken}); domain.KindOf(err) != domain.KindDuplicate {
		t.Fatalf("expected duplicate, got %v", err)
	}

	name := "Asha"
	same := "A@example.com"
	u, err := f.svc.UpdateProfile(context.Background(), a.User.ID, ProfileInput{FirstName: &name, Email: &same})
	if err != nil || u.FirstName != "Asha" || u.Email != "a@example.com" {
		t.Fatalf("update profile: %+v %v", u, err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	res := f.register(t, "a@example.com", "secret123")
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, res.User.ID, "wrong", "newpass1"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, res.User.ID, "secret123", "newpass1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !utils.CheckPassword("newpass1", f.users.users[res.User.ID].Password) {
		t.Fatal("password not changed")
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture()

	d, err := f.svc.Dashboard(context.Background(), uuid.New())
	if err != nil || d.TotalOrders != 3 || d.CartItemCount != 4 || len(d.RecentOrders) != 1 {
		t.Fatalf("dashboard: %+v %v", d, err)
	}
}
