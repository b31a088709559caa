package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

const welcomeSubject = "Welcome to Supermarket"

// AuthService 负责用户注册。
type AuthService struct {
	store      repository.Store
	dispatcher NotificationDispatcher
	bcryptCost int
	now        Clock
}

// NewAuthService 创建 AuthService 实例。
func NewAuthService(store repository.Store, dispatcher NotificationDispatcher) *AuthService {
	if store == nil {
		panic("Store cannot be nil for AuthService")
	}
	return &AuthService{
		store:      store,
		dispatcher: dispatcher,
		bcryptCost: bcrypt.DefaultCost,
		now:        utcNow,
	}
}

// Register 处理用户注册: 哈希密码，在同一事务中写入用户和欢迎邮件通知，提交后投递。
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	logCtx := logrus.WithFields(logrus.Fields{"operation": "Register", "email": email})

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	_, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil {
		logCtx.Warn("Registration failed: email already exists")
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Failed to look up user by email")
		return nil, ErrInternalServer
	}

	hashedPassword, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	now := s.now()
	user := &domain.User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
	}
	note := domain.NewNotification(domain.NotificationKindWelcome, email, welcomeSubject,
		fmt.Sprintf("Hi %s, thanks for registering!", name), now)

	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		note.SubjectRef = user.ID
		return tx.Notifications().Create(ctx, note)
	})
	if err != nil {
		// 并发注册同一邮箱时，唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: email already exists (unique index)")
			return nil, ErrEmailTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	dispatchAfterCommit(ctx, s.dispatcher, note)

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = ""
	return user, nil
}

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}
