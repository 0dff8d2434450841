package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/kendall-kelly/printshop-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterInput is the request body for creating a staff account
type RegisterInput struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserService manages staff accounts and credentials
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate checks credentials and stamps last_login.
// Unknown users and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		zap.L().Warn("failed login", zap.String("username", username))
		return nil, ErrInvalidLogin
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	t := now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", t).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &t
	return &user, nil
}

// Register creates an account after checking the username and password policy
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := models.ValidateUsername(in.Username); err != nil {
		return nil, Errorf(ErrValidation, "%s", err.Error())
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, Errorf(ErrValidation, "invalid email address %q", in.Email)
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		return nil, Errorf(ErrValidation, "%s", err.Error())
	}

	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsAdmin:   in.IsAdmin,
		IsActive:  true,
	}
	if err := s.create(ctx, &user, in.Password); err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("username", user.Username), zap.Bool("admin", user.IsAdmin))
	return &user, nil
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) error {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		return Errorf(ErrUserExists, "username %q or email %q is already registered", user.Username, user.Email)
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return Errorf(ErrUserExists, "username %q or email %q is already registered", user.Username, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get loads a user by ID
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// List returns all accounts sorted by username
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ResetPassword replaces a user's password, enforcing the policy
func (s *UserService) ResetPassword(ctx context.Context, id uint, password string) error {
	if err := models.ValidatePassword(password); err != nil {
		return Errorf(ErrValidation, "%s", err.Error())
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	zap.L().Info("password reset", zap.String("username", user.Username))
	return nil
}

// SetActive enables or disables an account. Deactivated users cannot sign in.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.IsActive = active
	return user, nil
}

// EnsureAdmin creates the named administrator if no user with that username exists.
// The password policy is not applied so the well-known bootstrap account can be seeded.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up %s: %w", username, err)
	}
	user := models.User{
		Username:  username,
		Email:     email,
		FirstName: "System",
		LastName:  "Administrator",
		IsAdmin:   true,
		IsActive:  true,
	}
	if err := s.create(ctx, &user, password); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}
