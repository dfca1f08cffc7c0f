package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avatarly/avatarly/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// userDocument is the JSONB body stored for each user. Identity and
// timestamps live in their own columns.
type userDocument struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Age      string  `json:"age"`
	Avatar   *string `json:"avatar,omitempty"`
	Password string  `json:"password"`
}

// CreateUser inserts a new user document.
// Returns ErrEmailExists when the unique email index rejects the insert.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	doc, err := json.Marshal(userDocument{
		Name:     user.Name,
		Email:    user.Email,
		Age:      user.Age,
		Avatar:   user.Avatar,
		Password: user.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to encode user document: %w", err)
	}

	query := `
		INSERT INTO users (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.pool.Exec(ctx, query,
		user.ID,
		doc,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, doc, created_at, updated_at
		FROM users
		WHERE doc->>'email' = $1
	`

	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user model.User
		raw  []byte
	)

	err := row.Scan(
		&user.ID,
		&raw,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode user document %s: %w", user.ID, err)
	}

	user.Name = doc.Name
	user.Email = doc.Email
	user.Age = doc.Age
	user.Avatar = doc.Avatar
	user.PasswordHash = doc.Password

	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
