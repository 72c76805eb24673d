package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig bounds the connection pool of one database handle.
type PoolConfig struct {
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
}

var (
	// AppPool serves the assistant tables.
	AppPool = PoolConfig{MaxIdle: 10, MaxOpen: 100, MaxLifetime: time.Hour}
	// ERPPool serves the report queries, which are few but slow.
	ERPPool = PoolConfig{MaxIdle: 2, MaxOpen: 20, MaxLifetime: 30 * time.Minute}
)

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, pool PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	return nil
}

func open(dsn string, level logger.LogLevel, pool PoolConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(level),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, pool); err != nil {
		return nil, err
	}

	return db, nil
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return open(dsn, logger.Info, AppPool)
}

// NewERPDB opens the ERP read model. Report SQL is large, so only slow or
// failing statements are logged.
func NewERPDB(dsn string) (*gorm.DB, error) {
	return open(dsn, logger.Warn, ERPPool)
}
