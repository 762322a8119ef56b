package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
)

// TokenType distinguishes student vs instructor tokens.
type TokenType string

const (
	TokenTypeStudent    TokenType = "student"
	TokenTypeInstructor TokenType = "instructor"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg            *config.Config
	rdb            *redis.Client
	studentRepo    *repository.StudentRepository
	instructorRepo *repository.InstructorRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, studentRepo *repository.StudentRepository, instructorRepo *repository.InstructorRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, studentRepo: studentRepo, instructorRepo: instructorRepo}
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

// LoginStudent authenticates a student and issues a single-session JWT.
// A second login while a session is active is rejected; the session expires
// with the token.
func (s *AuthService) LoginStudent(ctx context.Context, req model.LoginRequest) (*model.StudentLoginResponse, error) {
	student, err := s.studentRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	if err := s.CheckPassword(student.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	sessionKey := config.CacheKey.UserSessionKey(string(TokenTypeStudent), student.ID)
	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return nil, ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	token, err := s.generateToken(TokenTypeStudent, student.ID, jti)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &model.StudentLoginResponse{Token: token, Student: *student}, nil
}

// LoginInstructor authenticates an instructor and issues a JWT. Instructors
// may hold concurrent sessions.
func (s *AuthService) LoginInstructor(ctx context.Context, req model.LoginRequest) (*model.InstructorLoginResponse, error) {
	instructor, err := s.instructorRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if err := s.CheckPassword(instructor.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.generateToken(TokenTypeInstructor, instructor.ID, uuid.New().String())
	if err != nil {
		return nil, err
	}
	return &model.InstructorLoginResponse{Token: token, Instructor: *instructor}, nil
}

func (s *AuthService) generateToken(tokenType TokenType, userID int, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
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
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateStudentSession checks that the token's JTI matches the active
// session in Redis.
func (s *AuthService) ValidateStudentSession(ctx context.Context, studentID int, jti string) error {
	sessionKey := config.CacheKey.UserSessionKey(string(TokenTypeStudent), studentID)
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// ResetStudentSession removes a student's session, allowing a new login.
func (s *AuthService) ResetStudentSession(ctx context.Context, studentID int) error {
	sessionKey := config.CacheKey.UserSessionKey(string(TokenTypeStudent), studentID)
	return s.rdb.Del(ctx, sessionKey).Err()
}
