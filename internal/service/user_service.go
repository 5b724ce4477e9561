// internal/service/user_service.go
package service

import (
	"context"
	"errors"

	"studyflow/internal/config"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService はユーザー登録とBasic認証の資格情報検証を扱います。
// middleware.UserAuthenticator を実装する。
type UserService interface {
	Register(ctx context.Context, req *model.RegisterUserRequest) (*model.UserResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	Authenticate(ctx context.Context, email, password string) (uuid.UUID, error)
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func toUserResponse(user *model.User) *model.UserResponse {
	return &model.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterUserRequest) (*model.UserResponse, error) {
	logger := middleware.GetLogger(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Error hashing password", "error", err)
		return nil, model.ErrInternalServer
	}

	user := &model.User{
		UserID:       uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("EMAIL_CONFLICT", "このメールアドレスは既に登録されています。", "email", model.ErrConflict)
		}
		logger.Error("Transaction failed for Register", "error", err)
		return nil, model.ErrInternalServer
	}

	logger.Info("User registered", "user_id", user.UserID.String())
	return toUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Authenticate はメールアドレスとパスワードを検証し、ユーザーIDを返します。
// 資格情報の不一致は存在しないユーザーと区別しない。
func (s *userService) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return uuid.Nil, errors.New("invalid credentials")
		}
		return uuid.Nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return uuid.Nil, errors.New("invalid credentials")
	}
	return user.UserID, nil
}
