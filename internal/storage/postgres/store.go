package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/messagely/messagely-be/internal/models"
	"github.com/messagely/messagely-be/internal/storage"
	"github.com/messagely/messagely-be/internal/storage/postgres/migrations"
)

// Postgres error codes for constraint violations.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Ensure Store satisfies the storage interfaces at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users and messages.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and runs pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row. join_at and last_login_at are both set
// to the insert time.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, password, first_name, last_name, phone)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING username, password, first_name, last_name, phone, join_at, last_login_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// GetUser fetches a user by username.
func (s *Store) GetUser(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT username, password, first_name, last_name, phone, join_at, last_login_at
	FROM users
	WHERE username = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// GetCredentials fetches the stored password hash for a username.
func (s *Store) GetCredentials(ctx context.Context, username string) (string, error) {
	const query = `SELECT password FROM users WHERE username = $1;`
	var hash string
	if err := s.pool.QueryRow(ctx, query, username).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get credentials: %w", err)
	}
	return hash, nil
}

// TouchLogin sets last_login_at to the current time.
func (s *Store) TouchLogin(ctx context.Context, username string) error {
	const query = `
	UPDATE users SET last_login_at = NOW()
	WHERE username = $1
	RETURNING username;
	`
	var updated string
	if err := s.pool.QueryRow(ctx, query, username).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}

// ListUsers returns the public projection of every user.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	const query = `
	SELECT username, first_name, last_name, phone
	FROM users
	ORDER BY username;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// MessagesFrom returns messages sent by the user with the recipient embedded.
func (s *Store) MessagesFrom(ctx context.Context, username string) ([]models.OutboundMessage, error) {
	const query = `
	SELECT m.id, m.body, m.sent_at, m.read_at,
	       t.username, t.first_name, t.last_name, t.phone
	FROM messages AS m
	JOIN users AS t ON m.to_username = t.username
	WHERE m.from_username = $1
	ORDER BY m.sent_at;
	`
	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("messages from %s: %w", username, err)
	}
	defer rows.Close()

	messages := []models.OutboundMessage{}
	for rows.Next() {
		var m models.OutboundMessage
		if err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone); err != nil {
			return nil, fmt.Errorf("scan outbound message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messages from %s: %w", username, err)
	}
	return messages, nil
}

// MessagesTo returns messages received by the user with the sender embedded.
func (s *Store) MessagesTo(ctx context.Context, username string) ([]models.InboundMessage, error) {
	const query = `
	SELECT m.id, m.body, m.sent_at, m.read_at,
	       f.username, f.first_name, f.last_name, f.phone
	FROM messages AS m
	JOIN users AS f ON m.from_username = f.username
	WHERE m.to_username = $1
	ORDER BY m.sent_at;
	`
	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("messages to %s: %w", username, err)
	}
	defer rows.Close()

	messages := []models.InboundMessage{}
	for rows.Next() {
		var m models.InboundMessage
		if err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone); err != nil {
			return nil, fmt.Errorf("scan inbound message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messages to %s: %w", username, err)
	}
	return messages, nil
}

// CreateMessage inserts a message row. A foreign key violation means one of
// the usernames does not exist.
func (s *Store) CreateMessage(ctx context.Context, fromUsername, toUsername, body string) (models.Message, error) {
	const query = `
	INSERT INTO messages (from_username, to_username, body)
	VALUES ($1, $2, $3)
	RETURNING id, from_username, to_username, body, sent_at, read_at;
	`
	var m models.Message
	err := s.pool.QueryRow(ctx, query, fromUsername, toUsername, body).
		Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// GetMessage fetches a message with both parties embedded.
func (s *Store) GetMessage(ctx context.Context, id int64) (models.MessageDetail, error) {
	const query = `
	SELECT m.id, m.body, m.sent_at, m.read_at,
	       f.username, f.first_name, f.last_name, f.phone,
	       t.username, t.first_name, t.last_name, t.phone
	FROM messages AS m
	JOIN users AS f ON m.from_username = f.username
	JOIN users AS t ON m.to_username = t.username
	WHERE m.id = $1;
	`
	var d models.MessageDetail
	err := s.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MessageDetail{}, storage.ErrNotFound
		}
		return models.MessageDetail{}, fmt.Errorf("get message %d: %w", id, err)
	}
	return d, nil
}

// MarkRead sets read_at if it is not already set. Repeat calls keep the
// original timestamp, so marking a read message is a no-op.
func (s *Store) MarkRead(ctx context.Context, id int64) (models.ReadReceipt, error) {
	const query = `
	UPDATE messages SET read_at = COALESCE(read_at, NOW())
	WHERE id = $1
	RETURNING id, read_at;
	`
	var r models.ReadReceipt
	if err := s.pool.QueryRow(ctx, query, id).Scan(&r.ID, &r.ReadAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ReadReceipt{}, storage.ErrNotFound
		}
		return models.ReadReceipt{}, fmt.Errorf("mark read %d: %w", id, err)
	}
	return r, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Phone, &user.JoinAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
