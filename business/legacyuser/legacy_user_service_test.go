package legacyuser

import (
	"context"
	"encoding/json"
	"errors"
	"misikaMarket/domain"
	"misikaMarket/pkg/utils"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

type fakeRepo struct {
	users  map[string]domain.LegacyUser
	otps   map[string]domain.OTPVerification
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]domain.LegacyUser{}, otps: map[string]domain.OTPVerification{}}
}

func otpKey(email, purpose string) string {
	return email + "|" + purpose
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (domain.LegacyUser, error) {
	u, ok := f.users[email]
	if !ok {
		return domain.LegacyUser{}, domain.NewNotFoundError("user")
	}
	return u, nil
}

func (f *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeRepo) UpsertOTP(ctx context.Context, otp domain.OTPVerification) error {
	f.otps[otpKey(otp.Email, otp.Purpose)] = otp
	return nil
}

func (f *fakeRepo) FindOTP(ctx context.Context, email, purpose string) (domain.OTPVerification, error) {
	o, ok := f.otps[otpKey(email, purpose)]
	if !ok {
		return domain.OTPVerification{}, domain.NewNotFoundError("otp")
	}
	return o, nil
}

func (f *fakeRepo) consume(email, purpose, code string) error {
	o, ok := f.otps[otpKey(email, purpose)]
	if !ok || o.Code != code {
		return domain.ErrInvalidOTP
	}
	delete(f.otps, otpKey(email, purpose))
	return nil
}

func (f *fakeRepo) CreateWithOTP(ctx context.Context, user *domain.LegacyUser, purpose, code string) error {
	if err := f.consume(user.Email, purpose, code); err != nil {
		return err
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = *user
	return nil
}

func (f *fakeRepo) ResetPasswordWithOTP(ctx context.Context, email, purpose, code, hash string) error {
	if err := f.consume(email, purpose, code); err != nil {
		return err
	}
	u := f.users[email]
	u.Password = hash
	f.users[email] = u
	return nil
}

type fakeNotifier struct {
	sent []domain.Notification
}

func (f *fakeNotifier) Enqueue(n domain.Notification) {
	f.sent = append(f.sent, n)
}

func newService() (*legacyUserService, *fakeRepo, *fakeNotifier, *utils.JWTManager) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	tokens := utils.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	return NewLegacyUserService(repo, tokens, notifier, validator.New()), repo, notifier, tokens
}

func signupInput(email string) SignupInput {
	return SignupInput{Name: "Ravi", MobileNumber: "9876543210", Email: email, City: "Pune", Password: "secret123"}
}

func TestSignupFlow(t *testing.T) {
	svc, repo, notifier, tokens := newService()
	ctx := context.Background()

	if err := svc.SendSignupOTP(ctx, signupInput("Ravi@Example.com")); err != nil {
		t.Fatalf("send otp: %v", err)
	}

	otp, ok := repo.otps[otpKey("ravi@example.com", domain.OTPPurposeLegacySignup)]
	if !ok || len(otp.Code) != 6 {
		t.Fatalf("otp not stored: %+v", otp)
	}
	if strings.Contains(string(otp.Payload), "secret123") {
		t.Fatal("pending payload must hold a hash, not the password")
	}
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0].Message.Text, otp.Code) {
		t.Fatalf("otp email not sent: %+v", notifier.sent)
	}

	res, err := svc.VerifySignupOTP(ctx, "ravi@example.com", otp.Code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.User.ID == 0 || res.User.City != "Pune" {
		t.Fatalf("unexpected user %+v", res.User)
	}

	claims, err := tokens.Verify(res.AccessToken, utils.TokenKindAccess)
	if err != nil || claims.Provider != domain.ProviderLegacy || claims.Subject != "1" {
		t.Fatalf("token: %+v %v", claims, err)
	}

	if len(repo.otps) != 0 {
		t.Fatal("otp must be consumed")
	}
	if _, err := svc.VerifySignupOTP(ctx, "ravi@example.com", otp.Code); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("second verify must fail, got %v", err)
	}

	if _, err := svc.Login(ctx, "ravi@example.com", "secret123"); err != nil {
		t.Fatalf("login after signup: %v", err)
	}
}

func TestSendSignupOTPExistingEmail(t *testing.T) {
	svc, repo, _, _ := newService()
	repo.users["ravi@example.com"] = domain.LegacyUser{ID: 1, Email: "ravi@example.com"}

	err := svc.SendSignupOTP(context.Background(), signupInput("ravi@example.com"))
	if domain.KindOf(err) != domain.KindDuplicate {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestSendSignupOTPValidation(t *testing.T) {
	svc, repo, _, _ := newService()

	in := signupInput("ravi@example.com")
	in.MobileNumber = "123"
	if err := svc.SendSignupOTP(context.Background(), in); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.otps) != 0 {
		t.Fatal("no code should be stored")
	}
}

func TestResendReplacesPendingCode(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	_ = svc.SendSignupOTP(ctx, signupInput("ravi@example.com"))
	first := repo.otps[otpKey("ravi@example.com", domain.OTPPurposeLegacySignup)]

	in := signupInput("ravi@example.com")
	in.City = "Mumbai"
	_ = svc.SendSignupOTP(ctx, in)
	second := repo.otps[otpKey("ravi@example.com", domain.OTPPurposeLegacySignup)]

	if len(repo.otps) != 1 || !strings.Contains(string(second.Payload), "Mumbai") {
		t.Fatalf("pending signup not replaced: %+v", second)
	}
	if first.Code != second.Code {
		if _, err := svc.VerifySignupOTP(ctx, "ravi@example.com", first.Code); !errors.Is(err, domain.ErrInvalidOTP) {
			t.Fatalf("superseded code must fail, got %v", err)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	_ = svc.SendSignupOTP(ctx, signupInput("ravi@example.com"))
	otp := repo.otps[otpKey("ravi@example.com", domain.OTPPurposeLegacySignup)]

	svc.now = func() time.Time { return time.Now().Add(domain.OTPTTL + time.Second) }

	if _, err := svc.VerifySignupOTP(ctx, "ravi@example.com", otp.Code); !errors.Is(err, domain.ErrExpiredOTP) {
		t.Fatalf("expected expired, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatal("expired code must not create a user")
	}
}

func TestLegacyLoginIsGeneric(t *testing.T) {
	svc, repo, _, _ := newService()
	hash, _ := utils.HashPassword("secret123")
	repo.users["ravi@example.com"] = domain.LegacyUser{ID: 7, Email: "ravi@example.com", Password: string(hash)}

	_, errUnknown := svc.Login(context.Background(), "x@example.com", "secret123")
	_, errWrong := svc.Login(context.Background(), "ravi@example.com", "nope")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v / %v", errUnknown, errWrong)
	}
}

func TestLegacyResetPassword(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()
	hash, _ := utils.HashPassword("secret123")
	repo.users["ravi@example.com"] = domain.LegacyUser{ID: 7, Name: "Ravi", Email: "ravi@example.com", Password: string(hash)}

	if err := svc.ForgotPassword(ctx, "unknown@example.com"); err != nil {
		t.Fatalf("unknown email must succeed silently: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "ravi@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}

	otp := repo.otps[otpKey("ravi@example.com", domain.OTPPurposeLegacyReset)]
	if err := svc.ResetPassword(ctx, "ravi@example.com", otp.Code, "newpass1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if !utils.CheckPassword("newpass1", repo.users["ravi@example.com"].Password) {
		t.Fatal("password not updated")
	}
}

func TestGetByEmailHidesPassword(t *testing.T) {
	svc, repo, _, _ := newService()
	repo.users["ravi@example.com"] = domain.LegacyUser{ID: 7, Email: "ravi@example.com", Password: "hash"}

	u, err := svc.GetByEmail(context.Background(), "RAVI@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("unexpected user %+v", u)
	}

	body, _ := json.Marshal(u)
	if strings.Contains(string(body), "hash") {
		t.Fatalf("password leaked: %s", body)
	}
}
