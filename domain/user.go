package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   *string   `gorm:"column:username;uniqueIndex" json:"username,omitempty"`
	Email      string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"column:password;not null" json:"-"`
	FirstName  string    `gorm:"column:first_name" json:"firstName"`
	LastName   string    `gorm:"column:last_name" json:"lastName"`
	Phone      string    `gorm:"column:phone" json:"phone,omitempty"`
	Role       string    `gorm:"column:role;default:USER;not null" json:"role"`
	Status     string    `gorm:"column:status;default:active;not null" json:"status"`
	IsVerified bool      `gorm:"column:is_verified;default:false" json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Addresses []Address  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CartItems []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Orders    []Order    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

// LegacyUser lives in the raw-SQL userquery table. Its identifiers are a
// separate integer space and never refer to a User.
type LegacyUser struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	MobileNumber string    `json:"mobileNumber"`
	Email        string    `json:"email"`
	City         string    `json:"city"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	OTPPurposeLegacySignup = "legacy_signup"
	OTPPurposeLegacyReset  = "legacy_reset"
	OTPPurposeAccountReset = "account_reset"

	OTPTTL = 5 * time.Minute
)

// OTPVerification holds one pending code per (email, purpose). Payload keeps
// the pending signup profile so in-flight registrations survive restarts.
type OTPVerification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"-"`
	Email     string         `gorm:"column:email;not null;uniqueIndex:idx_otp_email_purpose" json:"email"`
	Purpose   string         `gorm:"column:purpose;not null;uniqueIndex:idx_otp_email_purpose" json:"purpose"`
	Code      string         `gorm:"column:code;not null" json:"-"`
	ExpiresAt time.Time      `gorm:"column:expires_at;not null" json:"expiresAt"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (OTPVerification) TableName() string {
	return "otp_verifications"
}

func (o *OTPVerification) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o OTPVerification) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// PendingLegacySignup is stored in OTPVerification.Payload between send-otp
// and verify-otp. Password is already hashed.
type PendingLegacySignup struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	City         string `json:"city"`
	PasswordHash string `json:"passwordHash"`
}

const (
	ProviderAccount = "account"
	ProviderLegacy  = "legacy"
)

// Principal is the identity the auth middleware attaches to a request.
type Principal struct {
	Provider  string    `json:"provider"`
	Subject   string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AccountID uuid.UUID `json:"-"`
	LegacyID  int64     `json:"-"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsAccount() bool {
	return p.Provider == ProviderAccount
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
