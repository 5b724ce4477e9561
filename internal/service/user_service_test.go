// internal/service/user_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_userService_Register(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewUserService(db, repository.NewGormUserRepository(), testConfig())

	t.Run("正常系: ユーザーを登録できる", func(t *testing.T) {
		user, err := service.Register(ctx, &model.RegisterUserRequest{
			Name:     "山田太郎",
			Email:    "taro@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.UserID)
		assert.Equal(t, "taro@example.com", user.Email)

		// 平文パスワードが保存されていないこと
		var stored model.User
		require.NoError(t, db.Where("user_id = ?", user.UserID).First(&stored).Error)
		assert.NotEqual(t, "password123", stored.PasswordHash)
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("異常系: 同じメールアドレスは409", func(t *testing.T) {
		_, err := service.Register(ctx, &model.RegisterUserRequest{
			Name:     "別の太郎",
			Email:    "taro@example.com",
			Password: "password456",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConflict))

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "EMAIL_CONFLICT", appErr.Detail.Code)
	})
}

func Test_userService_Authenticate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewUserService(db, repository.NewGormUserRepository(), testConfig())

	registered, err := service.Register(ctx, &model.RegisterUserRequest{
		Name:     "山田太郎",
		Email:    "taro@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "正常系: 正しい資格情報", email: "taro@example.com", password: "password123", wantErr: false},
		{name: "異常系: パスワード不一致", email: "taro@example.com", password: "wrongpass", wantErr: true},
		{name: "異常系: 未登録メールアドレス", email: "nobody@example.com", password: "password123", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := service.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, uuid.Nil, userID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, registered.UserID, userID)
			}
		})
	}
}
