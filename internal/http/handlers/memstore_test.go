package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/messagely/messagely-be/internal/models"
	"github.com/messagely/messagely-be/internal/storage"
)

// memStore is an in-memory storage.Store used by the handler tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	messages map[int64]models.Message
	nextID   int64
}

var _ storage.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.User{},
		messages: map[int64]models.Message{},
	}
}

func (s *memStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	now := time.Now()
	user.JoinAt = now
	user.LastLoginAt = now
	s.users[user.Username] = user
	return user, nil
}

func (s *memStore) GetUser(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *memStore) GetCredentials(ctx context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return "", storage.ErrNotFound
	}
	return user.PasswordHash, nil
}

func (s *memStore) TouchLogin(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	user.LastLoginAt = time.Now()
	s.users[username] = user
	return nil
}

func (s *memStore) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.UserSummary{}
	for _, user := range s.users {
		users = append(users, user.Summary())
	}
	return users, nil
}

func (s *memStore) MessagesFrom(ctx context.Context, username string) ([]models.OutboundMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.OutboundMessage{}
	for _, m := range s.messages {
		if m.FromUsername != username {
			continue
		}
		out = append(out, models.OutboundMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: s.users[m.ToUsername].Summary(),
		})
	}
	return out, nil
}

func (s *memStore) MessagesTo(ctx context.Context, username string) ([]models.InboundMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := []models.InboundMessage{}
	for _, m := range s.messages {
		if m.ToUsername != username {
			continue
		}
		in = append(in, models.InboundMessage{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: s.users[m.FromUsername].Summary(),
		})
	}
	return in, nil
}

func (s *memStore) CreateMessage(ctx context.Context, fromUsername, toUsername, body string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[fromUsername]; !ok {
		return models.Message{}, storage.ErrNotFound
	}
	if _, ok := s.users[toUsername]; !ok {
		return models.Message{}, storage.ErrNotFound
	}
	s.nextID++
	m := models.Message{
		ID:           s.nextID,
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       time.Now(),
	}
	s.messages[m.ID] = m
	return m, nil
}

func (s *memStore) GetMessage(ctx context.Context, id int64) (models.MessageDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return models.MessageDetail{}, storage.ErrNotFound
	}
	return models.MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: s.users[m.FromUsername].Summary(),
		ToUser:   s.users[m.ToUsername].Summary(),
	}, nil
}

func (s *memStore) MarkRead(ctx context.Context, id int64) (models.ReadReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return models.ReadReceipt{}, storage.ErrNotFound
	}
	if m.ReadAt == nil {
		now := time.Now()
		m.ReadAt = &now
		s.messages[id] = m
	}
	return models.ReadReceipt{ID: m.ID, ReadAt: *m.ReadAt}, nil
}
