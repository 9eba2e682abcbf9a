package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

const minPasswordLength = 6

// UserService implements signup, credential verification, profile edits and
// root-level role changes.
type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

// NewUserService creates a user service backed by db
func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{db: db, bcryptCost: bcryptCost}
}

// RegisterInput carries public signup fields
type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	PhoneNum *string `json:"phone_num,omitempty"`
	Image    *string `json:"image,omitempty"`
	AboutMe  *string `json:"about_me,omitempty"`
}

// UpdateProfileInput carries a self-service profile edit. Role and password
// are deliberately not part of it.
type UpdateProfileInput struct {
	Name     *string `json:"name,omitempty"`
	PhoneNum *string `json:"phone_num,omitempty"`
	Image    *string `json:"image,omitempty"`
	AboutMe  *string `json:"about_me,omitempty"`
}

func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name", "must not be empty")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.Validation("email", "malformed email address")
	}
	if len(in.Password) < minPasswordLength {
		return apperr.Validation("password", "must be at least 6 characters")
	}
	return nil
}

// Register creates a volunteer account with a hashed password. A duplicate
// email comes back as a conflict; the handler masks it with a generic
// message to avoid account enumeration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	user := model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hash),
		PhoneNum: in.PhoneNum,
		Image:    in.Image,
		AboutMe:  in.AboutMe,
		Role:     model.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Infrastructure(err)
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the account. Unknown email
// and wrong password produce the same authorization error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authorization("invalid credentials")
		}
		return nil, apperr.Infrastructure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	return &user, nil
}

// Get returns one user by id
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Infrastructure(err)
	}
	return &user, nil
}

// List returns all users (administrator listing)
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return users, nil
}

// UpdateProfile applies a self-service profile edit for userID
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNum != nil {
		updates["phone_num"] = *in.PhoneNum
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.AboutMe != nil {
		updates["about_me"] = *in.AboutMe
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperr.Infrastructure(err)
		}
	}
	return user, nil
}

// UpdatePassword replaces userID's password hash
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password", "must be at least 6 characters")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apperr.Infrastructure(err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// Promote raises a USER to ADMIN. Promoting an account that already holds
// administrator privileges is a validation error.
func (s *UserService) Promote(ctx context.Context, userID uint) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return apperr.Validation("role", "user is already an administrator")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", model.RoleAdmin).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// Demote lowers an ADMIN back to USER. The ROOT account cannot be demoted.
func (s *UserService) Demote(ctx context.Context, userID uint) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != model.RoleAdmin {
		return apperr.Validation("role", "user is not an administrator")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", model.RoleUser).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// EnsureRootAccount creates the configured ROOT account when no account with
// that email exists yet. Called once at startup; a no-op when the email is
// unset or the account is already present.
func (s *UserService) EnsureRootAccount(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Infrastructure(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apperr.Infrastructure(err)
	}
	root := model.User{
		Name:     name,
		Email:    strings.ToLower(email),
		Password: string(hash),
		Role:     model.RoleRoot,
	}
	if err := s.db.WithContext(ctx).Create(&root).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}
