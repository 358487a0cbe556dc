package storage

import (
	"context"
	"errors"

	"github.com/messagely/messagely-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	GetCredentials(ctx context.Context, username string) (string, error)
	TouchLogin(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	MessagesFrom(ctx context.Context, username string) ([]models.OutboundMessage, error)
	MessagesTo(ctx context.Context, username string) ([]models.InboundMessage, error)
}

// MessageStore captures message persistence operations needed by handlers.
type MessageStore interface {
	CreateMessage(ctx context.Context, fromUsername, toUsername, body string) (models.Message, error)
	GetMessage(ctx context.Context, id int64) (models.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (models.ReadReceipt, error)
}

// Store combines the persistence surfaces backed by a single database.
type Store interface {
	UserStore
	MessageStore
}
