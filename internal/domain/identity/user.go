package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inventa/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// TableName is the audit table identifier for users
const TableName = "users"

// Field limits
const (
	MaxNameLength     = 255
	MaxEmailLength    = 255
	MinPasswordLength = 6
)

// BcryptCost is the cost used when hashing passwords.
// Tests lower it to bcrypt.MinCost.
var BcryptCost = bcrypt.DefaultCost

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an administrator account
type User struct {
	shared.SoftDeletableEntity
	Name         string
	Email        string
	PasswordHash string
}

// NewUser creates a new user, hashing the password
func NewUser(name, email, password, confirmation string) (*User, error) {
	verr := &shared.ValidationError{}
	validateName(verr, name)
	validateEmail(verr, email)
	validatePassword(verr, password, confirmation)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &User{
		SoftDeletableEntity: shared.SoftDeletableEntity{
			BaseEntity: shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		},
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}, nil
}

// Update replaces name and email, and the password when one is given.
// An empty password keeps the current hash.
func (u *User) Update(name, email, password, confirmation string) error {
	verr := &shared.ValidationError{}
	validateName(verr, name)
	validateEmail(verr, email)
	if password != "" || confirmation != "" {
		validatePassword(verr, password, confirmation)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
		}
		u.PasswordHash = hash
	}
	u.Name = strings.TrimSpace(name)
	u.Email = strings.TrimSpace(email)
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Snapshot returns the attribute set recorded in audit payloads.
// The password hash is included; the audit layer redacts it before writing.
func (u *User) Snapshot() map[string]any {
	var deletedAt any
	if u.DeletedAt != nil {
		deletedAt = *u.DeletedAt
	}
	return map[string]any{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
		"deleted_at":    deletedAt,
	}
}

func validateName(verr *shared.ValidationError, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr.Add("name", "is required")
		return
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		verr.Add("name", "cannot exceed 255 characters")
	}
}

func validateEmail(verr *shared.ValidationError, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		verr.Add("email", "is required")
	case len(email) > MaxEmailLength:
		verr.Add("email", "cannot exceed 255 characters")
	case !emailRegex.MatchString(email):
		verr.Add("email", "must be a valid email address")
	}
}

func validatePassword(verr *shared.ValidationError, password, confirmation string) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		verr.Add("password", "must be at least 6 characters")
		return
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		verr.Add("password", "cannot exceed 72 bytes")
		return
	}
	if password != confirmation {
		verr.Add("password_confirmation", "does not match password")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
