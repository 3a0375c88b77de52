package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
	"farmconnect/pkg/apperrors"
)

// RegisterInput carries the fields accepted when creating an account.
type RegisterInput struct {
	Name              string
	Phone             string
	Email             string
	Password          string
	Role              string
	Village           string
	State             string
	City              string
	PreferredLanguage string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// RegisterUser hashes the password and stores a new farmer or consumer.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := identity.Role(strings.ToLower(in.Role))
	if !role.IsValid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "role must be farmer or consumer, got %q", in.Role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict, "email '%s' already registered", email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err, "lookup user by email")
	}
	if _, err := s.userRepo.GetByPhone(ctx, in.Phone); err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict, "phone '%s' already registered", in.Phone)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err, "lookup user by phone")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "hash password")
	}

	lang := in.PreferredLanguage
	if lang == "" {
		lang = "en"
	}
	user := &models.User{
		Name:              strings.TrimSpace(in.Name),
		Phone:             in.Phone,
		Email:             email,
		PasswordHash:      string(hashedPassword),
		Role:              role,
		Village:           in.Village,
		State:             in.State,
		City:              in.City,
		PreferredLanguage: lang,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still hit the unique index.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.New(apperrors.CodeConflict, "email or phone already registered")
		}
		return nil, apperrors.Internal(err, "create user")
	}
	return user, nil
}

// LoginUser authenticates by email and returns a signed JWT with the user.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, apperrors.Internal(err, "lookup user for login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"name":    user.Name,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, apperrors.Internal(err, "sign token")
	}

	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, err, "invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid token")
}

// ActorFromToken validates tokenString and resolves the caller it was issued to.
func (s *AuthService) ActorFromToken(tokenString string) (identity.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	return identity.New(userID, role)
}
