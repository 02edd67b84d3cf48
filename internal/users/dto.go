package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// DemoUserID identifies the synthesized demo identity. It never exists in the database.
const DemoUserID = "demo-id"

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone,omitempty"`
	Role        enums.Role          `json:"role"`
	Language    enums.Language      `json:"language,omitempty"`
	Location    *types.Location     `json:"location,omitempty"`
	Profile     *models.UserProfile `json:"profile,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
	IsVerified  bool                `json:"isVerified"`
	LastLoginAt *time.Time          `json:"lastLogin,omitempty"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
}

// Summary is the owner block embedded in crop listings.
type Summary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         enums.Role
	Language     enums.Language
	Location     *types.Location
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	location := u.Location
	profile := u.Profile
	profile.Crops = append(pq.StringArray{}, u.Profile.Crops...)
	prefs := u.Preferences
	created := u.CreatedAt

	return &UserDTO{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Language:    u.Language,
		Location:    &location,
		Profile:     &profile,
		Preferences: &prefs,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   &created,
	}
}

// DemoUser is the identity attached for the demo bearer token.
func DemoUser() *UserDTO {
	return &UserDTO{
		ID:    DemoUserID,
		Name:  "Demo User",
		Email: "demo@gmail.com",
		Role:  enums.RoleFarmer,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.RoleFarmer
	}
	language := c.Language
	if !language.IsValid() {
		language = enums.LanguageEnglish
	}
	location := types.DefaultLocation()
	if c.Location != nil {
		location = *c.Location
	}

	return &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:        strings.TrimSpace(c.Phone),
		PasswordHash: c.PasswordHash,
		Role:         role,
		Language:     language,
		Location:     location,
		Profile:      models.UserProfile{Crops: pq.StringArray{}},
		Preferences:  models.DefaultPreferences(),
		IsActive:     true,
	}
}
