package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService guards the REST admin surface. Login checks the configured
// admin password (bcrypt hash from the environment) and issues a short-lived
// JWT; role checks for chat commands live in the router, not here.
type AuthService struct {
	jwtSecret []byte
	adminHash string
}

func NewAuthService(jwtSecret, adminHash string) *AuthService {
	return &AuthService{jwtSecret: []byte(jwtSecret), adminHash: adminHash}
}

func (s *AuthService) Login(password string) (string, error) {
	if s.adminHash == "" {
		return "", errors.New("admin login disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return s.GenerateToken()
}

func (s *AuthService) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"admin": true,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	if isAdmin, ok := claims["admin"].(bool); !ok || !isAdmin {
		return errors.New("not an admin token")
	}
	return nil
}
