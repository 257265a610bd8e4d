package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tidepool/internal/models"
	"tidepool/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserService owns account registration, login, and profile updates.
// Token refresh and external identity providers are handled elsewhere.
type UserService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{userRepo: userRepo, jwtSecret: jwtSecret}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult carries the authenticated user and a signed bearer token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	if len(username) < 3 || len(username) > 32 {
		return nil, models.NewValidationError("Username must be between 3 and 32 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, models.NewValidationError("Email is invalid")
	}
	if len(in.Password) < 8 || len(in.Password) > 128 {
		return nil, models.NewValidationError("Password must be between 8 and 128 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		PlanTier: models.PlanTierFree,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// A missing account and a wrong password are indistinguishable to
		// the caller.
		return nil, models.NewValidationError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewValidationError("Invalid email or password")
	}

	return s.issueToken(user)
}

func (s *UserService) issueToken(user *models.User) (*AuthResult, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: signed}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	UserID uint
	Bio    string
	Avatar string
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	user.Bio = in.Bio
	user.Avatar = in.Avatar
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
