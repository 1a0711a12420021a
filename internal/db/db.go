package db

import (
	"fmt"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/saferoute-app/saferoute-server/internal/config"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MakeDB(cfg *config.Config) (db *gorm.DB, err error) {
	var dialector gorm.Dialector
	switch cfg.Persistence.Database.Driver {
	case config.DatabaseDriverSQLite:
		dsn := cfg.Persistence.Database.Database + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
		if cfg.Persistence.Database.ExtraParameters != "" {
			dsn += "&" + cfg.Persistence.Database.ExtraParameters
		}
		dialector = sqlite.Open(dsn)
	case config.DatabaseDriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.Persistence.Database.Username,
			cfg.Persistence.Database.Password,
			cfg.Persistence.Database.Host,
			cfg.Persistence.Database.Port,
			cfg.Persistence.Database.Database)
		if cfg.Persistence.Database.ExtraParameters != "" {
			dsn += "&" + cfg.Persistence.Database.ExtraParameters
		}
		dialector = mysql.Open(dsn)
	case config.DatabaseDriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			cfg.Persistence.Database.Host,
			cfg.Persistence.Database.Port,
			cfg.Persistence.Database.Username,
			cfg.Persistence.Database.Password,
			cfg.Persistence.Database.Database)
		if cfg.Persistence.Database.ExtraParameters != "" {
			dsn += " " + cfg.Persistence.Database.ExtraParameters
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Persistence.Database.Driver)
	}

	db, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return db, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.HTTP.Tracing.Enabled {
		if err = db.Use(otelgorm.NewPlugin()); err != nil {
			return db, fmt.Errorf("failed to trace database: %w", err)
		}
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.FavoriteRoute{},
		&models.ScheduledRoute{})
	if err != nil {
		return db, fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return db, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	const connsPerCPU = 10
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	const maxIdleTime = 10 * time.Minute
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return
}
