// db/db.go
package db

import (
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	logger "github.com/bookhive/api/logging"
)

var DB *gorm.DB

func InitDB() error {
	dsn := viper.GetString("database.dsn")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	logger.Info("Successfully connected to database")
	return nil
}

func CloseDB() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Error("Error retrieving database handle")
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection")
	}
}
