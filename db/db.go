package db

import (
	"fmt"
	"time"

	"invensys/config"
	"invensys/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig is shared by the Postgres connection and the test harness so
// both translate driver errors the same way.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// ConnectDB opens Postgres and runs migrations. The caller owns the returned
// handle; there is no package-level connection.
func ConnectDB(cfg config.DBConfig, strict bool, log *zap.Logger) (*gorm.DB, error) {
	const maxAttempts = 10

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= maxAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
		if err == nil {
			break
		}
		log.Warn("database not ready", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(conn, strict); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return conn, nil
}

func Migrate(db *gorm.DB, strict bool) error {
	if err := db.AutoMigrate(
		&models.LaptopStatus{},
		&models.BusinessUnit{},
		&models.Department{},
		&models.Organization{},
		&models.User{},
		&models.Laptop{},
		&models.Allocation{},
		&models.Accessory{},
		&models.Procurement{},
		&models.RepairEntry{},
		&models.AuditEntry{},
	); err != nil {
		return err
	}

	// 查询当前分配更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_laptop
	  ON %s (laptop_id, allocation_date DESC)
	  WHERE is_active;
	`, models.AllocationTable, models.AllocationTable)).Error; err != nil {
		return err
	}

	if !strict {
		return nil
	}
	// 同一台电脑最多一条 is_active=true
	return db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_laptop
	  ON %s (laptop_id)
	  WHERE is_active;
	`, models.AllocationTable, models.AllocationTable)).Error
}
