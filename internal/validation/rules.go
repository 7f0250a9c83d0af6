package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	MinMoney   = decimal.RequireFromString("0.01")
	MaxMoney   = decimal.RequireFromString("999999.99")
	MinPercent = decimal.Zero
	MaxPercent = decimal.NewFromInt(100)
)

const (
	MinQuantity = 1
	MaxQuantity = 999999

	maxNameLen     = 255
	maxCodeLen     = 50
	maxUsernameLen = 150
	minPasswordLen = 8
	maxPasswordLen = 128

	PasswordSpecials = `!@#$%^&*(),.?":{}|<>`
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Scope carries the acting principal and, on update, the id of the record being
// updated so that uniqueness checks skip it.
type Scope struct {
	Principal uuid.UUID
	Exclude   uuid.UUID
}

type CompanyNameLookup interface {
	ExistsByOwnerAndNameCI(ctx context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
}

type ProductCodeLookup interface {
	ExistsByCodeCI(ctx context.Context, code string, exclude uuid.UUID) (bool, error)
}

type UsernameLookup interface {
	ExistsByUsernameCI(ctx context.Context, username string) (bool, error)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// displayName checks the Empty/TooShort/TooLong rules shared by company and product names.
func displayName(field, label, raw string) (string, *FieldError) {
	if blank(raw) {
		return "", newErr(field, EmptyValue, "%s must not be empty", label)
	}
	trimmed := strings.TrimSpace(raw)
	if runeLen(trimmed) < 2 {
		return "", newErr(field, TooShort, "%s must be at least 2 characters", label)
	}
	if runeLen(raw) > maxNameLen {
		return "", newErr(field, TooLong, "%s is too long (max %d characters)", label, maxNameLen)
	}
	return trimmed, nil
}

func CompanyName(ctx context.Context, raw string, sc Scope, lookup CompanyNameLookup) (string, error) {
	name, fe := displayName("name", "company name", raw)
	if fe != nil {
		return "", fe
	}
	exists, err := lookup.ExistsByOwnerAndNameCI(ctx, sc.Principal, name, sc.Exclude)
	if err != nil {
		return "", fmt.Errorf("check company name: %w", err)
	}
	if exists {
		return "", newErr("name", DuplicateName, "a company with this name already exists")
	}
	return name, nil
}

func ProductName(raw string) (string, error) {
	name, fe := displayName("name", "product name", raw)
	if fe != nil {
		return "", fe
	}
	return name, nil
}

func validCodeChars(raw string) bool {
	alnum := 0
	for _, r := range raw {
		switch {
		case r == '-' || r == '_':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			alnum++
		default:
			return false
		}
	}
	return alnum > 0
}

// ProductCode returns the trimmed, upper-cased code. Uniqueness is system-wide.
func ProductCode(ctx context.Context, raw string, sc Scope, lookup ProductCodeLookup) (string, error) {
	if blank(raw) {
		return "", newErr("code", EmptyValue, "product code must not be empty")
	}
	if !validCodeChars(raw) {
		return "", newErr("code", InvalidFormat, "product code may contain only letters, digits, hyphen (-) and underscore (_)")
	}
	trimmed := strings.TrimSpace(raw)
	if runeLen(trimmed) < 2 {
		return "", newErr("code", TooShort, "product code must be at least 2 characters")
	}
	if runeLen(raw) > maxCodeLen {
		return "", newErr("code", TooLong, "product code is too long (max %d characters)", maxCodeLen)
	}
	exists, err := lookup.ExistsByCodeCI(ctx, trimmed, sc.Exclude)
	if err != nil {
		return "", fmt.Errorf("check product code: %w", err)
	}
	if exists {
		return "", newErr("code", DuplicateCode, "product code is already in use")
	}
	return strings.ToUpper(trimmed), nil
}

func tooManyDecimals(d decimal.Decimal) bool { return d.Exponent() < -2 }

// Money validates a currency amount in [0.01, 999999.99] with at most 2 decimals.
func Money(field, label string, d decimal.Decimal) *FieldError {
	if d.LessThan(MinMoney) {
		return newErr(field, BelowMinimum, "%s must be at least %s", label, MinMoney)
	}
	if d.GreaterThan(MaxMoney) {
		return newErr(field, AboveMaximum, "%s is too high (max %s)", label, MaxMoney)
	}
	if tooManyDecimals(d) {
		return newErr(field, TooManyDecimals, "%s may have at most 2 decimal places", label)
	}
	return nil
}

func ProductPrice(p *decimal.Decimal) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Decimal{}, newErr("price", MissingValue, "price is required")
	}
	if fe := Money("price", "price", *p); fe != nil {
		return decimal.Decimal{}, fe
	}
	return *p, nil
}

// Percent validates a discount or VAT percentage in [0, 100].
func Percent(field, label string, d decimal.Decimal) *FieldError {
	if d.LessThan(MinPercent) {
		return newErr(field, BelowMinimum, "%s must not be negative", label)
	}
	if d.GreaterThan(MaxPercent) {
		return newErr(field, AboveMaximum, "%s must not exceed 100", label)
	}
	if tooManyDecimals(d) {
		return newErr(field, TooManyDecimals, "%s may have at most 2 decimal places", label)
	}
	return nil
}

func Quantity(field string, q int) *FieldError {
	if q < MinQuantity {
		return newErr(field, BelowMinimum, "quantity must be at least %d", MinQuantity)
	}
	if q > MaxQuantity {
		return newErr(field, AboveMaximum, "quantity is too high (max %d)", MaxQuantity)
	}
	return nil
}

// Username returns the trimmed, lower-cased username.
func Username(ctx context.Context, raw string, lookup UsernameLookup) (string, error) {
	if blank(raw) {
		return "", newErr("username", EmptyValue, "username must not be empty")
	}
	trimmed := strings.TrimSpace(raw)
	if runeLen(trimmed) < 3 {
		return "", newErr("username", TooShort, "username must be at least 3 characters")
	}
	if runeLen(raw) > maxUsernameLen {
		return "", newErr("username", TooLong, "username is too long (max %d characters)", maxUsernameLen)
	}
	if !usernameRe.MatchString(raw) {
		return "", newErr("username", InvalidFormat, "username may contain only letters, digits, underscore (_) and hyphen (-)")
	}
	if raw[0] >= '0' && raw[0] <= '9' {
		return "", newErr("username", StartsWithDigit, "username must not start with a digit")
	}
	normalized := strings.ToLower(trimmed)
	exists, err := lookup.ExistsByUsernameCI(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("check username: %w", err)
	}
	if exists {
		return "", newErr("username", DuplicateName, "username is already taken")
	}
	return normalized, nil
}

// Password reports every failed strength rule, one WeakPassword per missing class.
func Password(pw string) error {
	var errs Errors
	n := runeLen(pw)
	if n < minPasswordLen {
		errs.Add(newErr("password", TooShort, "password must be at least %d characters", minPasswordLen))
	}
	if n > maxPasswordLen {
		errs.Add(newErr("password", TooLong, "password is too long (max %d characters)", maxPasswordLen))
	}

	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	if !upper {
		errs.Add(newErr("password", WeakPassword, "password must contain at least one uppercase letter"))
	}
	if !lower {
		errs.Add(newErr("password", WeakPassword, "password must contain at least one lowercase letter"))
	}
	if !digit {
		errs.Add(newErr("password", WeakPassword, "password must contain at least one digit"))
	}
	if !special {
		errs.Add(newErr("password", WeakPassword, "password must contain at least one special character (%s)", PasswordSpecials))
	}
	return errs.Err()
}

// PasswordConfirm only fires when a confirmation was actually supplied.
func PasswordConfirm(pw, confirm string) error {
	if confirm != "" && confirm != pw {
		return newErr("password_confirm", PasswordMismatch, "passwords do not match")
	}
	return nil
}
