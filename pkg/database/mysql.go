// Package database 负责打开持久化键值存储所用的数据库连接。
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eduassist-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接
func InitMySQL(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	DB = db
	log.Info("MySQL database connected successfully")
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// 只记录慢查询和错误
		Logger: logger.Default.LogMode(logger.Warn),
	}
}
