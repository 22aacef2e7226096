package db

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

func (db *Postgres) InsertLoginLog(ctx context.Context, entry model.LoginLog) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO login_logs (user_id, method, ip_address, user_agent, is_success, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Pool.Exec(ctx, query,
		entry.UserID,
		string(entry.Method),
		entry.IPAddress,
		entry.UserAgent,
		entry.IsSuccess,
		entry.FailureReason,
		createdAt,
	)
	return err
}

// ListLoginLogs returns the user's login history, newest first.
func (db *Postgres) ListLoginLogs(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.LoginLog], error) {
	result := model.Page[model.LoginLog]{PageRequest: page, Items: []model.LoginLog{}}

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM login_logs WHERE user_id = $1`, userID).Scan(&result.Total); err != nil {
		return result, err
	}

	query := `
		SELECT id, user_id, method, ip_address, user_agent, is_success, failure_reason, created_at
		FROM login_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := db.Pool.Query(ctx, query, userID, page.Limit, page.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry model.LoginLog
		var method string
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&method,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.IsSuccess,
			&entry.FailureReason,
			&entry.CreatedAt,
		); err != nil {
			return result, err
		}
		entry.Method = model.LoginMethod(method)
		result.Items = append(result.Items, entry)
	}
	return result, rows.Err()
}
