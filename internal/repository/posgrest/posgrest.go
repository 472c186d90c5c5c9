package posgrest

import (
	"context"

	"gorm.io/gorm"
)

type repository[T interface{}] struct {
	db *gorm.DB
}

func New[T interface{}](db *gorm.DB) *repository[T] {
	return &repository[T]{
		db,
	}
}

func (r *repository[T]) Create(ctx context.Context, entity *T) error {
	return translateError(r.db.WithContext(ctx).Create(entity).Error)
}

// First loads the single record matching query.
func (r *repository[T]) First(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where(query, args...).First(&entity).Error; err != nil {
		return nil, translateError(err)
	}
	return &entity, nil
}

// Find loads every record matching query sorted by order. An empty order keeps storage order.
func (r *repository[T]) Find(ctx context.Context, order string, query string, args ...interface{}) ([]T, error) {
	var entities []T
	tx := r.db.WithContext(ctx).Where(query, args...)
	if order != "" {
		tx = tx.Order(order)
	}
	if err := tx.Find(&entities).Error; err != nil {
		return nil, translateError(err)
	}
	return entities, nil
}

func (r *repository[T]) Count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var (
		entity T
		count  int64
	)
	if err := r.db.WithContext(ctx).Model(&entity).Where(query, args...).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}
