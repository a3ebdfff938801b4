package store

import (
	"time"

	"pigeon/internal/models"
)

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	ListUsers() ([]models.User, error)

	// Message operations
	AppendMessage(sender, recipient int, text, file string, at time.Time) (int64, error)
	MessagesBetween(a, b int) ([]models.Message, error)
}
