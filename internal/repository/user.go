package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, name, telegram_chat_id)
		 VALUES ($1, $2, $3)
		 RETURNING user_id, created_at`,
		u.Email, u.Name, u.TelegramChatID,
	).Scan(&u.UserID, &u.CreatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, email, name, telegram_chat_id, created_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.UserID, &u.Email, &u.Name, &u.TelegramChatID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id, email, name, telegram_chat_id, created_at FROM users`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.TelegramChatID, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
