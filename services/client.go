package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"food-truck/db"
	"food-truck/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxUsernameLen    = 50
	minPasswordLen    = 4
	maxPasswordBytes  = 72 // bcrypt input limit
	uniqueViolationPG = "23505"
)

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrClientNotFound     = errors.New("client not found")
)

func ValidateRegister(in models.RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(in.Password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return fmt.Errorf("invalid email: %s", in.Email)
		}
	}
	return nil
}

// Register stores a new client with a bcrypt hash of the password. Do not log the password.
func Register(ctx context.Context, in models.RegisterInput) (*models.Client, error) {
	if err := ValidateRegister(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	c := models.Client{Username: strings.TrimSpace(in.Username), Email: in.Email}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO client (username, password_hash, email)
		VALUES ($1, $2, $3)
		RETURNING client_id, created_at`,
		c.Username, string(hash), c.Email,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationPG {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &c, nil
}

// Login checks the password against the stored bcrypt hash.
func Login(ctx context.Context, username, password string) (*models.Client, error) {
	var hash string
	var email *string
	c := models.Client{Username: username}
	err := db.Pool.QueryRow(ctx, `
		SELECT client_id, password_hash, email, created_at FROM client WHERE username = $1`,
		username,
	).Scan(&c.ID, &hash, &email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if email != nil {
		c.Email = *email
	}
	return &c, nil
}

func GetProfile(ctx context.Context, username string) (*models.Client, error) {
	var email *string
	c := models.Client{Username: username}
	err := db.Pool.QueryRow(ctx, `
		SELECT client_id, email, created_at FROM client WHERE username = $1`,
		username,
	).Scan(&c.ID, &email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if email != nil {
		c.Email = *email
	}
	return &c, nil
}
