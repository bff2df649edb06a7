package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/repo"
	"everkeep-api/pkg/utils"
)

type UserService struct {
	users *repo.UserRepo
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{users: repo.NewUserRepo(db)}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: utils.HashPassword(in.Password),
		Plan:         domain.PlanFree,
		Role:         "user",
	}
	if err := s.users.Create(ctx, u); err != nil {
		if domain.IsDupKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, offset, limit)
}

func (s *UserService) Ban(ctx context.Context, id string) error {
	return s.users.SoftDelete(ctx, id)
}
