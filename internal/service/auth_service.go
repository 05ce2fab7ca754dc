package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveLogin      = errors.New("no active session")
	ErrLoginSuperseded    = errors.New("session invalidated by a newer login")
)

// Claims extends JWT standard claims with the student's email.
// Subject carries the student's external id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// StudentFinder is the student lookup used by authentication.
type StudentFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Student, error)
}

// AuthService handles authentication, JWT, and single-device sessions.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	students StudentFinder
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, students StudentFinder) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, students: students}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials and issues a token. A new login replaces the
// previous one, so only the most recent device stays signed in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.StudentLoginResponse, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	if err := s.CheckPassword(student.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.GenerateStudentToken(ctx, student)
	if err != nil {
		return nil, err
	}
	return &model.StudentLoginResponse{Token: token, Student: *student}, nil
}

// GenerateStudentToken creates a JWT for a student and registers its id in Redis.
func (s *AuthService) GenerateStudentToken(ctx context.Context, student *model.Student) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   student.ExternalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Email: student.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	sessionKey := config.CacheKey.StudentSessionKey(student.ExternalID)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateStudentSession checks that the token's JTI is the student's current login.
func (s *AuthService) ValidateStudentSession(ctx context.Context, subjectID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.StudentSessionKey(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoActiveLogin
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return ErrLoginSuperseded
	}
	return nil
}

// Logout ends the student's login if jti is still the current one.
func (s *AuthService) Logout(ctx context.Context, subjectID, jti string) error {
	if err := s.ValidateStudentSession(ctx, subjectID, jti); err != nil {
		return err
	}
	return s.rdb.Del(ctx, config.CacheKey.StudentSessionKey(subjectID)).Err()
}

// Me returns the authenticated student's profile.
func (s *AuthService) Me(ctx context.Context, subjectID string) (*model.Student, error) {
	return s.students.GetByExternalID(ctx, subjectID)
}
