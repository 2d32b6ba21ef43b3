package database

import (
	"context"
	"strings"
	"testing"

	"praxis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

type sqlCapture struct{ last string }

// newDryRunDB opens a connection-less gorm instance that builds SQL without
// executing it, recording the final statement of every read.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlCapture) {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	rec := &sqlCapture{}
	err = db.Callback().Query().After("gorm:query").Register("record_sql", func(tx *gorm.DB) {
		rec.last = tx.Statement.SQL.String()
	})
	require.NoError(t, err)
	return db, rec
}

func TestStoreEntityNameFromType(t *testing.T) {
	db, _ := newDryRunDB(t)
	assert.Equal(t, "Patient", NewStoreWith[models.Patient](db, nil).entity)
	assert.Equal(t, "AuditLog", NewStoreWith[models.AuditLog](db, nil).entity)
}

func TestStoreFindComposesScopes(t *testing.T) {
	db, rec := newDryRunDB(t)
	store := NewStoreWith[models.Patient](db, nil)

	_, err := store.Find(context.Background(),
		func(q *gorm.DB) *gorm.DB { return q.Where("branch_id = ?", "b1") },
		func(q *gorm.DB) *gorm.DB { return q.Where("gender = ?", "female").Order("created_at DESC") },
	)
	require.NoError(t, err)

	assert.Contains(t, rec.last, "branch_id")
	assert.Contains(t, rec.last, "gender")
	assert.Contains(t, rec.last, "ORDER BY created_at DESC")
}

func TestStoreCountSeesSameConditions(t *testing.T) {
	db, rec := newDryRunDB(t)
	store := NewStoreWith[models.Patient](db, nil)

	scope := func(q *gorm.DB) *gorm.DB { return q.Where("branch_id = ?", "b1") }
	_, err := store.Count(context.Background(), scope)
	require.NoError(t, err)

	assert.Contains(t, strings.ToUpper(rec.last), "COUNT")
	assert.Contains(t, rec.last, "branch_id")
}

func TestStoreFindOneBuildsCondition(t *testing.T) {
	db, rec := newDryRunDB(t)
	store := NewStoreWith[models.User](db, nil)

	_, err := store.FindOne(context.Background(), "email = ? AND active = ?", "a@b.c", true)
	require.NoError(t, err)

	assert.Contains(t, rec.last, "email")
	assert.Contains(t, rec.last, "active")
}
