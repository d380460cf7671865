package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Subscriber - локальная запись о пользователе для рассылки. Единственное
// durable состояние бота: всё остальное (балансы, рефералы, выводы) живёт
// в бэкенде фаучета.
type Subscriber struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

// SubscriberRepository хранит подписчиков рассылки в Postgres.
type SubscriberRepository struct {
	db *sqlx.DB
}

// NewSubscriberRepository создаёт репозиторий подписчиков.
func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert регистрирует подписчика при /start; повторный /start обновляет
// только username.
func (r *SubscriberRepository) Upsert(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO broadcast_subscribers (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username
	`
	_, err := r.db.ExecContext(ctx, query, userID, username)
	return err
}

// List возвращает всех подписчиков рассылки.
func (r *SubscriberRepository) List(ctx context.Context) ([]Subscriber, error) {
	var subs []Subscriber
	query := `SELECT user_id, username, created_at FROM broadcast_subscribers ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}
