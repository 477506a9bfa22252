// Package postgres provides a PostgreSQL implementation of storage.Store built on GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New connects to the database at dsn and migrates the schema.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&userRow{},
		&groupRow{},
		&groupMemberRow{},
		&expenseRow{},
		&expenseShareRow{},
		&paymentRow{},
		&activityRow{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}

	row := &userRow{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s: %w", user.Email, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toUser(&row), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return toUser(&row), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []userRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	for i := range rows {
		users[rows[i].ID] = toUser(&rows[i])
	}
	return users, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Currency == "" {
		group.Currency = models.DefaultCurrency
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &groupRow{
			ID:        group.ID,
			Name:      group.Name,
			Currency:  group.Currency,
			CreatedAt: group.CreatedAt,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return insertMembers(tx, group.ID, group.Members, group.CreatedAt)
	})
}

func insertMembers(tx *gorm.DB, groupID string, userIDs []string, joinedAt int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]groupMemberRow, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, groupMemberRow{GroupID: groupID, UserID: id, JoinedAt: joinedAt})
	}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to insert group members: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var row groupRow
	err := s.db.WithContext(ctx).Where("id = ?", groupID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	groups, err := s.withMembers(ctx, []groupRow{row})
	if err != nil {
		return nil, err
	}
	return groups[0], nil
}

func (s *Store) ListGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	if err := s.groupExists(s.db.WithContext(ctx), groupID); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.WithContext(ctx).Model(&groupMemberRow{}).
		Where("group_id = ?", groupID).Order("user_id").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	return ids, nil
}

func (s *Store) groupExists(db *gorm.DB, groupID string) error {
	var count int64
	if err := db.Model(&groupRow{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	var rows []groupRow
	if err := s.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return s.withMembers(ctx, rows)
}

func (s *Store) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	var rows []groupRow
	err := s.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name, groups.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}
	return s.withMembers(ctx, rows)
}

// withMembers loads the members of every row in one query.
func (s *Store) withMembers(ctx context.Context, rows []groupRow) ([]*models.Group, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	var members []groupMemberRow
	err := s.db.WithContext(ctx).Where("group_id IN ?", ids).Order("user_id").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}

	byGroup := make(map[string][]string)
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m.UserID)
	}

	groups := make([]*models.Group, len(rows))
	for i, r := range rows {
		groups[i] = &models.Group{
			ID:        r.ID,
			Name:      r.Name,
			Currency:  r.Currency,
			Members:   byGroup[r.ID],
			CreatedAt: r.CreatedAt,
		}
	}
	return groups, nil
}

func (s *Store) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.groupExists(tx, groupID); err != nil {
			return err
		}
		return insertMembers(tx, groupID, userIDs, time.Now().Unix())
	})
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &expenseRow{
			ID:          expense.ID,
			GroupID:     expense.GroupID,
			Description: expense.Description,
			Amount:      expense.Amount,
			PayerID:     expense.PayerID,
			SplitType:   string(expense.SplitType),
			CreatedAt:   expense.CreatedAt,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		if len(expense.Shares) == 0 {
			return nil
		}
		shares := make([]expenseShareRow, len(expense.Shares))
		for i := range expense.Shares {
			expense.Shares[i].ExpenseID = expense.ID
			shares[i] = expenseShareRow{
				ExpenseID: expense.ID,
				UserID:    expense.Shares[i].UserID,
				Value:     expense.Shares[i].Value,
			}
		}
		if err := tx.Create(&shares).Error; err != nil {
			return fmt.Errorf("failed to insert expense shares: %w", err)
		}
		return nil
	})
}

func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var row expenseRow
	err := s.db.WithContext(ctx).Where("id = ?", expenseID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense := toExpense(&row)
	expense.Shares, err = s.ListExpenseShares(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	var rows []expenseRow
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("created_at DESC, seq DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	expenses := make([]*models.Expense, len(rows))
	for i := range rows {
		expenses[i] = toExpense(&rows[i])
	}
	return expenses, nil
}

func (s *Store) ListExpenseShares(ctx context.Context, expenseID string) ([]models.ExpenseShare, error) {
	var rows []expenseShareRow
	err := s.db.WithContext(ctx).Where("expense_id = ?", expenseID).Order("user_id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}

	var shares []models.ExpenseShare
	for _, r := range rows {
		shares = append(shares, models.ExpenseShare{ExpenseID: r.ExpenseID, UserID: r.UserID, Value: r.Value})
	}
	return shares, nil
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expenseID).Delete(&expenseShareRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete expense shares: %w", err)
		}
		result := tx.Where("id = ?", expenseID).Delete(&expenseRow{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete expense: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	row := &paymentRow{
		ID:         payment.ID,
		GroupID:    payment.GroupID,
		FromUserID: payment.FromUserID,
		ToUserID:   payment.ToUserID,
		Amount:     payment.Amount,
		CreatedAt:  payment.CreatedAt,
		CreatedBy:  payment.CreatedBy,
	}
	if payment.Note != "" {
		note := payment.Note
		row.Note = &note
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var row paymentRow
	err := s.db.WithContext(ctx).Where("id = ?", paymentID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toPayment(&row), nil
}

func (s *Store) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	var rows []paymentRow
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("created_at DESC, seq DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by group: %w", err)
	}

	payments := make([]*models.Payment, len(rows))
	for i := range rows {
		payments[i] = toPayment(&rows[i])
	}
	return payments, nil
}

func (s *Store) DeletePayment(ctx context.Context, paymentID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", paymentID).Delete(&paymentRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	row := &activityRow{
		ID:          activity.ID,
		GroupID:     activity.GroupID,
		ActorID:     activity.ActorID,
		Kind:        string(activity.Kind),
		Description: activity.Description,
		Amount:      activity.Amount,
		ReferenceID: activity.ReferenceID,
		CreatedAt:   activity.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivityByGroups(ctx context.Context, groupIDs []string, limit int) ([]*models.Activity, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	q := s.db.WithContext(ctx).Where("group_id IN ?", groupIDs).Order("created_at DESC, seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []activityRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	activities := make([]*models.Activity, len(rows))
	for i := range rows {
		activities[i] = toActivity(&rows[i])
	}
	return activities, nil
}
