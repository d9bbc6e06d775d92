// Package auth verifies credentials and issues access tokens for the API.
package auth

import (
	"errors"
	"log"
	"strings"

	"ibank/internal/models"
	"ibank/internal/repositories"
	"ibank/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Login(username, password string) (*models.User, string, error)
}

type service struct {
	userRepo repositories.UserRepository
}

func NewService(userRepo repositories.UserRepository) Service {
	if userRepo == nil {
		panic("user repository is required")
	}
	return &service{userRepo: userRepo}
}

// Login verifies the username and password and returns the user with a signed
// access token. Unknown users and wrong passwords are indistinguishable to the
// caller.
func (s *service) Login(username, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		log.Printf("login failed: user not found for username %q", username)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: incorrect password for user ID %d", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(&models.UserClaims{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		log.Println("error generating token:", err)
		return nil, "", errors.New("error generating token")
	}

	return user, token, nil
}
