package service

import (
	"context"
	"errors"
	"strings"

	"eshop-api/internal/apperror"
	"eshop-api/internal/events"
	"eshop-api/internal/logger"
	"eshop-api/internal/model"
	"eshop-api/internal/repository"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost   = 10
	userNotFound = "The user with the given ID was not found"
)

type TokenSigner interface {
	Sign(userID string, isAdmin bool) (string, error)
}

type LoginResult struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type UserService struct {
	repo   UserRepository
	tokens TokenSigner
	events events.Publisher
}

var UserServiceTracer = otel.Tracer("UserService")

func NewUserService(repo UserRepository, tokens TokenSigner, publisher events.Publisher) *UserService {
	return &UserService{repo: repo, tokens: tokens, events: publisher}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching users")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Get")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, storeErr(err, userNotFound, "Error fetching user")
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Count")
	defer span.End()
	logger.Info(ctx, "Service")

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeErr(err, "", "Error counting users")
	}
	return n, nil
}

// Create registers u with a bcrypt hash of password. The admin flag is kept
// only when the caller is an admin.
func (s *UserService) Create(ctx context.Context, u *model.User, password string, callerIsAdmin bool) (*model.User, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if strings.TrimSpace(u.Name) == "" || u.Email == "" {
		return nil, apperror.Validation("Name and email are required")
	}
	if password == "" {
		return nil, apperror.Validation("Password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, apperror.Internal("The user cannot be created", err)
	}
	u.PasswordHash = string(hash)
	u.IsAdmin = u.IsAdmin && callerIsAdmin

	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Validation("Email is already registered")
		}
		return nil, storeErr(err, "", "The user cannot be created")
	}
	publish(ctx, s.events, events.UserCreated, u.ID)

	u.PasswordHash = ""
	return u, nil
}

// Update applies patch; a non-nil password is re-hashed.
func (s *UserService) Update(ctx context.Context, id string, patch model.UserPatch, password *string) (*model.User, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Update")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if email == "" {
			return nil, apperror.Validation("Email cannot be empty")
		}
		patch.Email = &email
	}
	if password != nil && *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), BcryptCost)
		if err != nil {
			return nil, apperror.Internal("The user cannot be updated", err)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}

	u, err := s.repo.Update(ctx, objID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Validation("Email is already registered")
		}
		return nil, storeErr(err, userNotFound, "The user cannot be updated")
	}
	publish(ctx, s.events, events.UserUpdated, u.ID)

	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return storeErr(err, "User not found", "The user cannot be deleted")
	}
	publish(ctx, s.events, events.UserDeleted, objID)
	return nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := UserServiceTracer.Start(ctx, "UserService.Login")
	defer span.End()
	logger.Info(ctx, "Service")

	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Validation("no user found")
		}
		return nil, storeErr(err, "", "Login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Validation("wrong password")
	}

	token, err := s.tokens.Sign(u.ID.Hex(), u.IsAdmin)
	if err != nil {
		return nil, apperror.Internal("Login failed", err)
	}
	return &LoginResult{Email: u.Email, Token: token}, nil
}
