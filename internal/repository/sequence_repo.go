package repository

import (
	"context"
	"errors"

	"vehiclerent/internal/domain"

	"gorm.io/gorm"
)

// SequenceRepository backs day-scoped identifier allocation.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Increment atomically bumps the named counter and returns the new value,
// creating it at 1 on first use.
func (r *SequenceRepository) Increment(ctx context.Context, name string) (int64, error) {
	var (
		value int64
		err   error
	)
	// a concurrent first use can win the insert; the second pass then finds the row
	for attempt := 0; attempt < 2; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&domain.Counter{}).
				Where("name = ?", name).
				Updates(map[string]any{"value": gorm.Expr("value + 1")})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if err := tx.Create(&domain.Counter{Name: name, Value: 1}).Error; err != nil {
					return err
				}
			}
			var c domain.Counter
			if err := tx.Where("name = ?", name).First(&c).Error; err != nil {
				return err
			}
			value = c.Value
			return nil
		})
		if err == nil || !IsUniqueViolation(err) {
			break
		}
	}
	return value, err
}

// LastCode returns the lexicographically largest code in table.column that
// starts with prefix, or "" when there is none.
func (r *SequenceRepository) LastCode(ctx context.Context, table, column, prefix string) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &codes).Error
	if err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

func (r *SequenceRepository) Current(ctx context.Context, name string) (int64, error) {
	var c domain.Counter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return c.Value, err
}
