package auth

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/smartkisan/kisan-backend/internal/users"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

const (
	minPasswordLength = 6
	maxNameLength     = 50

	msgRegisterMissingFields = "Please provide name, email, phone, and password"
	msgPasswordTooShort      = "Password must be at least 6 characters long"
	msgInvalidPhone          = "Please provide a valid 10-digit Indian phone number"
	msgUserExists            = "User with this email or phone number already exists"
)

var (
	indianPhonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	fieldValidator     = validator.New()
)

// Register creates a farmer account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgRegisterMissingFields)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name cannot be more than 50 characters")
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please provide a valid email")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgPasswordTooShort)
	}
	if !indianPhonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidPhone)
	}
	language := req.Language
	if language != "" && !language.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Language %s is not supported", language)
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing user")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, msgUserExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         enums.RoleFarmer,
		Language:     language,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeBadRequest, msgUserExists)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	token, err := s.issue(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: users.FromModel(user)}, nil
}
