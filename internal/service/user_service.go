package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
}

type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
}

type UserService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (uuid.UUID, error)
}

type userService struct {
	repo   *repository.Repository
	hasher PasswordHasher
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(repo *repository.Repository, hasher PasswordHasher, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// RegisterUser не требует принципала.
func (s *userService) RegisterUser(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	var errs validation.Errors

	username, err := validation.Username(ctx, in.Username, s.repo.Users)
	if err := errs.Collect(err); err != nil {
		return uuid.Nil, err
	}
	_ = errs.Collect(validation.Password(in.Password))
	_ = errs.Collect(validation.PasswordConfirm(in.Password, in.PasswordConfirm))
	if err := errs.Err(); err != nil {
		return uuid.Nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: username, Password: hash, CreatedAt: s.now()}
	if err := s.repo.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return uuid.Nil, validation.Single("username", validation.DuplicateName, "username is already taken")
		}
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("Пользователь зарегистрирован", zap.String("user_id", u.ID.String()))
	return u.ID, nil
}
