package psql

import (
	"context"
	"fmt"
	"time"

	"ordermind/ordermind/config"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func DSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	db, err := Open(ctx, postgres.Open(DSN(cfg)))
	if err != nil {
		return nil, err
	}
	var currentDB string
	_ = db.DB.WithContext(ctx).Raw("SELECT current_database()").Scan(&currentDB).Error
	logging.AppLogger.Info("connected to database",
		zap.String("host", cfg.DBHost),
		zap.String("database", currentDB),
	)
	return db, nil
}

// Open connects through any gorm dialector and runs the schema migration.
func Open(ctx context.Context, dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &Database{DB: db}
	if err := d.Migrate(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Migrate creates or updates every table. It is safe to run repeatedly.
func (db *Database) Migrate(ctx context.Context) error {
	err := db.DB.WithContext(ctx).
		AutoMigrate(
			&models.User{},
			&models.Order{},
			&models.ChatTurn{},
			&models.VectorRecord{},
		)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
