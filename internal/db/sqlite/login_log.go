package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/kitforge/backend/internal/model"
)

func (s *Storage) InsertLoginLog(ctx context.Context, entry model.LoginLog) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_logs (user_id, method, ip_address, user_agent, is_success, failure_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.UserID, string(entry.Method), entry.IPAddress, entry.UserAgent, entry.IsSuccess, entry.FailureReason, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert login log: %w", err)
	}
	return nil
}

func (s *Storage) ListLoginLogs(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.LoginLog], error) {
	result := model.Page[model.LoginLog]{PageRequest: page, Items: []model.LoginLog{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM login_logs WHERE user_id = ?`, userID).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count login logs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, method, ip_address, user_agent, is_success, failure_reason, created_at
		FROM login_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, page.Limit, page.Offset())
	if err != nil {
		return result, fmt.Errorf("failed to query login logs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

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
			return result, fmt.Errorf("failed to scan login log: %w", err)
		}
		entry.Method = model.LoginMethod(method)
		result.Items = append(result.Items, entry)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
