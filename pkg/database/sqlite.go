package database

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"eduassist-go/pkg/log"
)

// InitSQLite 打开嵌入式 SQLite 文件，单机部署时替代 MySQL。
func InitSQLite(path string) {
	db, err := OpenSQLite(path)
	if err != nil {
		log.Fatal("failed to open sqlite database", err)
	}
	DB = db
	log.Infof("SQLite database opened at %s", path)
}

// OpenSQLite 打开（必要时创建）path 处的 SQLite 数据库。
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	// SQLite 只允许一个写连接
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
