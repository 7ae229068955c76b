package auth

import (
	"time"

	"attendance-station/internal/apperr"
	"attendance-station/internal/models"
	"attendance-station/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// Service authenticates operator accounts and issues API tokens.
type Service struct {
	users  repository.UserRepository
	secret []byte
	logger *logrus.Logger
}

func NewService(users repository.UserRepository, secret []byte) *Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Service{
		users:  users,
		secret: secret,
		logger: logger,
	}
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", apperr.Storage("failed to look up user", err)
	}
	if user == nil {
		return "", apperr.Unauthorized("authentication failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", username).Warn("Failed login attempt")
		return "", apperr.Unauthorized("authentication failed")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Username,
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.logger.WithField("username", username).Info("Operator logged in")
	return signed, nil
}

// Register creates an operator account with a bcrypt-hashed password.
func (s *Service) Register(username, password, role string) error {
	if username == "" || password == "" {
		return apperr.InvalidArgument("username and password are required")
	}
	if role != models.RoleAdmin && role != models.RoleOperator {
		return apperr.InvalidArgument("unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.Create(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// EnsureDefaultAdmin seeds the admin account on a fresh database.
func (s *Service) EnsureDefaultAdmin() error {
	count, err := s.users.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := s.Register("admin", "admin123", models.RoleAdmin); err != nil {
		return err
	}

	s.logger.Warn("Default admin account created; change its password")
	return nil
}
