package database

import (
	"context"
	"reflect"

	"praxis-backend/audit"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the generic data-access surface every domain controller mutates
// through. Each mutation is dispatched through the audit interceptor with the
// matching operation kind and the real GORM call as the continuation; reads
// are not audited.
type Store[T any] struct {
	db      *gorm.DB
	auditor *audit.Auditor
	entity  string
}

// NewStore builds a store over the package-level connection and auditor.
func NewStore[T any]() *Store[T] {
	return NewStoreWith[T](DB, Auditor)
}

// NewStoreWith builds a store over an explicit connection and auditor.
// Used by tests and anything running against a secondary database.
func NewStoreWith[T any](db *gorm.DB, auditor *audit.Auditor) *Store[T] {
	var zero T
	return &Store[T]{db: db, auditor: auditor, entity: reflect.TypeOf(zero).Name()}
}

func (s *Store[T]) Create(ctx context.Context, row *T) error {
	_, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindCreate, Entity: s.entity, Data: row}, func() (any, error) {
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	})
	return err
}

// Upsert inserts the row or, on a primary-key conflict, replaces the
// existing row's columns with the new values.
func (s *Store[T]) Upsert(ctx context.Context, row *T) error {
	_, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindUpsert, Entity: s.entity, Data: row}, func() (any, error) {
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(row).Error
		if err != nil {
			return nil, err
		}
		return row, nil
	})
	return err
}

// Update applies a partial update to the row with the given id and returns
// the updated row. gorm.ErrRecordNotFound when no row matched.
func (s *Store[T]) Update(ctx context.Context, id string, updates any) (*T, error) {
	res, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindUpdate, Entity: s.entity, TargetID: id, Data: updates}, func() (any, error) {
		var row T
		tx := s.db.WithContext(ctx).Model(&row).
			Clauses(clause.Returning{}).
			Where("id = ?", id).
			Updates(updates)
		if tx.Error != nil {
			return nil, tx.Error
		}
		if tx.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}

// Delete removes the row with the given id and returns it as deleted.
func (s *Store[T]) Delete(ctx context.Context, id string) (*T, error) {
	res, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindDelete, Entity: s.entity, TargetID: id}, func() (any, error) {
		var row T
		tx := s.db.WithContext(ctx).
			Clauses(clause.Returning{}).
			Where("id = ?", id).
			Delete(&row)
		if tx.Error != nil {
			return nil, tx.Error
		}
		if tx.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}

// CreateMany batch-inserts rows. The audit record stores the submitted
// payload since the result is only a row count.
func (s *Store[T]) CreateMany(ctx context.Context, rows []T) (int64, error) {
	res, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindCreateMany, Entity: s.entity, Data: rows}, func() (any, error) {
		tx := s.db.WithContext(ctx).Create(&rows)
		if tx.Error != nil {
			return nil, tx.Error
		}
		return tx.RowsAffected, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// UpdateMany applies updates to every row matching the condition and returns
// the affected-row count.
func (s *Store[T]) UpdateMany(ctx context.Context, updates any, query any, args ...any) (int64, error) {
	res, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindUpdateMany, Entity: s.entity, Data: updates}, func() (any, error) {
		var zero T
		tx := s.db.WithContext(ctx).Model(&zero).Where(query, args...).Updates(updates)
		if tx.Error != nil {
			return nil, tx.Error
		}
		return tx.RowsAffected, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// DeleteMany removes every row matching the condition and returns the
// affected-row count.
func (s *Store[T]) DeleteMany(ctx context.Context, query any, args ...any) (int64, error) {
	res, err := s.auditor.Exec(ctx, audit.Op{Kind: audit.KindDeleteMany, Entity: s.entity}, func() (any, error) {
		var zero T
		tx := s.db.WithContext(ctx).Where(query, args...).Delete(&zero)
		if tx.Error != nil {
			return nil, tx.Error
		}
		return tx.RowsAffected, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindOne returns the first row matching the condition.
// gorm.ErrRecordNotFound when nothing matched.
func (s *Store[T]) FindOne(ctx context.Context, query any, args ...any) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Scope narrows a list query; scopes compose left to right. Controllers build
// their filter sets as scopes so Find and Count see the same conditions on a
// fresh statement each call.
type Scope = func(*gorm.DB) *gorm.DB

func (s *Store[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	var rows []T
	var zero T
	if err := s.db.WithContext(ctx).Model(&zero).Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	var zero T
	if err := s.db.WithContext(ctx).Model(&zero).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
