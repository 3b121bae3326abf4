package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/redis"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserInput   = errors.New("invalid user input")
	ErrEmailNotVerified   = errors.New("email not verified")
)

type AuthService interface {
	Register(email, password, name string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	// AdminLogin is Login restricted to staff and above.
	AdminLogin(email, password string) (*model.User, *util.TokenPair, error)
	// LoginWithGoogle signs in the owner of a verified Google profile,
	// creating the account on first use.
	LoginWithGoogle(profile *util.GoogleProfile) (*model.User, *util.TokenPair, error)
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	Logout(ctx context.Context, token string, ttl time.Duration) error
}

type authService struct {
	userRepo      repository.UserRepository
	mailer        util.Mailer
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer util.Mailer,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(email, password, name string) (*model.User, *util.TokenPair, error) {
	email = util.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	logger.Info("Attempting user registration", logger.Fields{
		"email": email,
		"name":  name,
	})

	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidUserInput
	}
	if err := util.CheckPasswordStrength(password); err != nil {
		return nil, nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, logger.Fields{
			"email": email,
		})
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", logger.Fields{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Provider:     model.ProviderLocal,
		Role:         model.RoleCustomer,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user", err, logger.Fields{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name); err != nil {
			logger.Warn("Failed to send welcome email", logger.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}

	logger.Info("User registered successfully", logger.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	email = util.NormalizeEmail(email)
	logger.Info("Attempting user login", logger.Fields{
		"email": email,
	})

	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}
	return s.completeLogin(user)
}

func (s *authService) AdminLogin(email, password string) (*model.User, *util.TokenPair, error) {
	email = util.NormalizeEmail(email)
	logger.Info("Attempting admin login", logger.Fields{
		"email": email,
	})

	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsStaff() {
		logger.Warn("Admin login refused for non-staff user", logger.Fields{
			"user_id": user.ID,
			"role":    user.Role,
		})
		return nil, nil, ErrInvalidCredentials
	}
	return s.completeLogin(user)
}

func (s *authService) LoginWithGoogle(profile *util.GoogleProfile) (*model.User, *util.TokenPair, error) {
	if profile == nil {
		return nil, nil, ErrInvalidUserInput
	}
	email := util.NormalizeEmail(profile.Email)
	logger.Info("Attempting Google login", logger.Fields{
		"email": email,
	})

	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidUserInput
	}
	if !profile.VerifiedEmail {
		logger.Warn("Google login refused: email not verified", logger.Fields{
			"email": email,
		})
		return nil, nil, ErrEmailNotVerified
	}

	user, err := s.userRepo.FindByEmail(email)
	switch {
	case err == nil:
		if profile.Picture != "" && user.Picture != profile.Picture {
			user.Picture = profile.Picture
			if err := s.userRepo.Update(user); err != nil {
				logger.Warn("Failed to refresh profile picture", logger.Fields{
					"user_id": user.ID,
					"error":   err.Error(),
				})
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.createGoogleUser(email, profile)
		if err != nil {
			return nil, nil, err
		}
	default:
		logger.Error("Failed to find user", err, logger.Fields{
			"email": email,
		})
		return nil, nil, err
	}

	return s.completeLogin(user)
}

// createGoogleUser stores a passwordless account; password login stays refused for it.
func (s *authService) createGoogleUser(email string, profile *util.GoogleProfile) (*model.User, error) {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	user := &model.User{
		Email:    email,
		Name:     name,
		Picture:  profile.Picture,
		Provider: model.ProviderGoogle,
		Role:     model.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create Google user", err, logger.Fields{
			"email": email,
		})
		return nil, err
	}

	logger.Info("Google user created", logger.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) authenticate(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", logger.Fields{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, logger.Fields{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", logger.Fields{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) completeLogin(user *model.User) (*model.User, *util.TokenPair, error) {
	now := time.Now().UTC()
	if err := s.userRepo.RecordLogin(user.ID, now); err != nil {
		logger.Warn("Failed to record login", logger.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	} else {
		user.LastLoginAt = &now
		user.LoginCount++
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", logger.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens", err, logger.Fields{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, util.ErrInvalidToken
	}

	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", logger.Fields{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, logger.Fields{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, token string, ttl time.Duration) error {
	if err := redis.BlacklistToken(ctx, token, ttl); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	logger.Info("User logged out")
	return nil
}
