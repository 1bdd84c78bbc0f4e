package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/pagination"
)

// paginate counts the filtered rows, fixes the page against the count and
// loads that page.
func paginate[T any](ctx context.Context, db *gorm.DB, req *pagination.Request, preloads ...string) ([]T, int64, error) {
	var count int64
	if err := req.Filter(db.WithContext(ctx).Model(new(T))).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	if err := req.Resolve(count); err != nil {
		return nil, 0, err
	}

	q := req.Scope(db.WithContext(ctx).Model(new(T)))
	for _, p := range preloads {
		q = q.Preload(p)
	}
	items := make([]T, 0, req.Limit())
	if err := q.Offset(req.Offset()).Limit(req.Limit()).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return items, count, nil
}

// first loads one row by condition, mapping a missing row to ErrNotFound.
func first[T any](ctx context.Context, db *gorm.DB, query string, arg any, preloads ...string) (*T, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var out T
	if err := q.Where(query, arg).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// nameTaken reports whether another row of model already uses name.
func nameTaken(ctx context.Context, db *gorm.DB, model any, column, name string, exceptID uint) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(model).Where(column+" = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func exists(ctx context.Context, db *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// all loads every row in the given order, for the unpaginated HTML lists.
func all[T any](ctx context.Context, db *gorm.DB, order string, preloads ...string) ([]T, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var out []T
	if err := q.Order(order).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return out, nil
}
