package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/repository"
	"clear-ai-go/pkg/database"
	"clear-ai-go/pkg/hash"
	"clear-ai-go/pkg/log"
	"clear-ai-go/pkg/token"
)

var (
	// ErrUserExists 用户名已被注册。
	ErrUserExists = errors.New("用户名已存在")
	// ErrInvalidCredentials 用户名或密码错误。
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

// TokenPair 一次登录颁发的访问令牌与刷新令牌。
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService 用户注册、登录与令牌管理。
type UserService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	// Logout 将令牌加入 Redis 黑名单，直到其自然过期。
	Logout(ctx context.Context, tokenString string) error
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type userService struct {
	repo       repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(repo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{repo: repo, jwtManager: jwtManager}
}

// Register 注册新用户，密码以 bcrypt 哈希存储。
func (s *userService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	u := &model.User{Username: username, Password: hashed, Role: "USER"}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Infof("用户注册成功, username=%s", username)
	return u, nil
}

// Login 校验凭证并颁发令牌对。
func (s *userService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPasswordHash(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(u)
}

// Logout 按令牌剩余有效期写入黑名单。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return fmt.Errorf("令牌无效: %w", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	key := "jwt:blacklist:" + tokenString
	if err := database.RDB.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("写入令牌黑名单失败: %w", err)
	}
	log.Infof("用户登出, userID=%d", claims.UserID)
	return nil
}

// GetProfile 查询用户信息。
func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RefreshToken 校验刷新令牌并颁发新的令牌对。
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("刷新令牌无效: %w", err)
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(u)
}

func (s *userService) issueTokens(u *model.User) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("生成访问令牌失败: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("生成刷新令牌失败: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
