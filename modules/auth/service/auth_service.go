package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/cache"
	"go-event-cms/core/config"
	"go-event-cms/core/constants"
	"go-event-cms/core/errors"
	"go-event-cms/core/logger"
	"go-event-cms/core/utils"
	"go-event-cms/modules/auth/dto"
	"go-event-cms/modules/auth/entity"
	"go-event-cms/modules/auth/repository"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *errors.AppError)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, *errors.AppError)
	Logout(ctx context.Context, refreshToken string) *errors.AppError
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, *errors.AppError)
	Can(ctx context.Context, userID, privilege string) (bool, error)
}

// AuthService issues token pairs and answers privilege checks. Refresh tokens
// are single use: each is tracked in the cache under its jti and rotated on
// refresh.
type AuthService struct {
	repo  repository.UserRepositoryInterface
	cache cache.Cache
}

func NewAuthService(repo repository.UserRepositoryInterface, cache cache.Cache) *AuthService {
	return &AuthService{repo: repo, cache: cache}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, *errors.AppError) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email is already registered", nil)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash password", err)
	}

	user := &entity.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		// New accounts can edit drafts; publish and admin are granted
		// separately.
		Privileges: map[string]bool{constants.PrivilegeEdit: true},
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create user", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *errors.AppError) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}
	if user == nil || !utils.ComparePassword(user.PasswordHash, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid email or password", nil)
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token must still be tracked
// in the cache, and is dropped before the new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, *errors.AppError) {
	claims, appErr := s.validateRefresh(ctx, refreshToken)
	if appErr != nil {
		return nil, appErr
	}

	if err := s.cache.Del(ctx, constants.RedisKeyRefreshToken+claims.ID); err != nil {
		logger.Warn("AuthService:Refresh:DropToken", "error", err.Error())
	}

	id, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Malformed user id in token", err)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User no longer exists", nil)
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) *errors.AppError {
	claims, appErr := s.validateRefresh(ctx, refreshToken)
	if appErr != nil {
		return appErr
	}
	if err := s.cache.Del(ctx, constants.RedisKeyRefreshToken+claims.ID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to revoke refresh token", err)
	}
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, *errors.AppError) {
	user, appErr := s.loadUser(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToUserResponse(user), nil
}

// Can reports whether the user holds the privilege. Implements the
// capability check the middleware and the events service depend on.
func (s *AuthService) Can(ctx context.Context, userID, privilege string) (bool, error) {
	user, appErr := s.loadUser(ctx, userID)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return false, nil
		}
		return false, appErr
	}
	return user.HasPrivilege(privilege), nil
}

func (s *AuthService) loadUser(ctx context.Context, userID string) (*entity.User, *errors.AppError) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user id", err)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, *errors.AppError) {
	cfg := config.Get()
	accessTTL := time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	refreshTTL := time.Duration(cfg.JWT.RefreshTTLMinutes) * time.Minute

	access, err := utils.GenerateToken(user.ID.Hex(), constants.ScopeTokenAccess, accessTTL)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to sign access token", err)
	}
	refresh, err := utils.GenerateToken(user.ID.Hex(), constants.ScopeTokenRefresh, refreshTTL)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to sign refresh token", err)
	}

	claims, err := utils.ValidateAndParseToken(refresh)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to read back refresh token", err)
	}
	if err := s.cache.Set(ctx, constants.RedisKeyRefreshToken+claims.ID, user.ID.Hex(), refreshTTL); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to track refresh token", err)
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.ToUserResponse(user),
	}, nil
}

func (s *AuthService) validateRefresh(ctx context.Context, refreshToken string) (*utils.TokenClaims, *errors.AppError) {
	claims, err := utils.ValidateAndParseToken(refreshToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid or expired refresh token", err)
	}
	if claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Refresh token required", nil)
	}

	if _, err := s.cache.Get(ctx, constants.RedisKeyRefreshToken+claims.ID); err != nil {
		if err == cache.ErrCacheMiss {
			return nil, errors.NewAppError(errors.ErrUnauthorized, "Refresh token has been revoked", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check refresh token", err)
	}
	return claims, nil
}
