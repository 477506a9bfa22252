package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateActivity appends an entry to the activity feed.
func (s *SQLiteStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, group_id, actor_id, kind, description, amount, reference_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID, activity.GroupID, activity.ActorID, string(activity.Kind),
		activity.Description, activity.Amount, activity.ReferenceID, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivityByGroups retrieves the newest activity across the given groups.
func (s *SQLiteStore) ListActivityByGroups(ctx context.Context, groupIDs []string, limit int) ([]*models.Activity, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	query := `SELECT id, group_id, actor_id, kind, description, amount, reference_id, created_at
		 FROM activities WHERE group_id IN (` + placeholders(len(groupIDs)) + `)
		 ORDER BY created_at DESC, rowid DESC`
	args := stringArgs(groupIDs)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a := &models.Activity{}
		var kind string
		if err := rows.Scan(&a.ID, &a.GroupID, &a.ActorID, &kind, &a.Description,
			&a.Amount, &a.ReferenceID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Kind = models.ActivityKind(kind)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return activities, nil
}
