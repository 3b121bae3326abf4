package service

import (
	"errors"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotModifySelf = errors.New("cannot change your own account")
)

type UserService interface {
	ListUsers() ([]model.User, error)
	UpdateRole(actorID, userID uint, role model.UserRole) (*model.User, error)
	DeleteUser(actorID, userID uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}
	return users, nil
}

func (s *userService) UpdateRole(actorID, userID uint, role model.UserRole) (*model.User, error) {
	logger.Info("Updating user role", logger.Fields{
		"actor_id": actorID,
		"user_id":  userID,
		"role":     role,
	})

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrCannotModifySelf
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to update user role", err, logger.Fields{
			"user_id": userID,
		})
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(actorID, userID uint) error {
	if actorID == userID {
		return ErrCannotModifySelf
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		logger.Error("Failed to delete user", err, logger.Fields{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User deleted", logger.Fields{
		"actor_id": actorID,
		"user_id":  userID,
	})
	return nil
}
