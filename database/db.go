package database

import (
	"context"
	"fmt"
	"os"

	"praxis-backend/audit"
	"praxis-backend/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB      *gorm.DB
	Auditor *audit.Auditor
)

// Connect opens the database and wires the audit interceptor around it.
// A missing .env file is fine in containerized deployments where the
// variables come from the environment directly.
func Connect() {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found, using process environment")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "db"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), port)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("could not connect to database", zap.Error(err))
	}

	Auditor = audit.New(auditSink{db: DB}, rowLookup{db: DB}, zap.L())
	zap.L().Info("database connected")
}

func AutoMigrate() {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Appointment{},
		&models.InventoryItem{},
		&models.Prescription{},
		&models.AuditLog{},
		&models.IdempotencyRecord{},
	); err != nil {
		zap.L().Fatal("automigrate failed", zap.Error(err))
	}
}

// auditSink writes audit rows on the raw connection, outside the audited
// store, so an audit insert can never be intercepted again.
type auditSink struct {
	db *gorm.DB
}

func (s auditSink) Write(ctx context.Context, rec *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// rowLookup is the pre-state capture capability: entity name to table via the
// connection's naming strategy, row fetched into a plain map. Any failure
// (row gone, odd schema) reports "no snapshot".
type rowLookup struct {
	db *gorm.DB
}

func (l rowLookup) PointLookup(ctx context.Context, entity, id string) (any, bool) {
	table := l.db.NamingStrategy.TableName(entity)
	row := map[string]any{}
	if err := l.db.WithContext(ctx).Table(table).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, false
	}
	return row, true
}
