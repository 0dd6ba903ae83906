package db

import (
	"errors"

	"invitetrack/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Open connects to MySQL if a DSN is given, SQLite otherwise
func Open(mysqlDSN, sqliteFile string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if mysqlDSN != "" {
		dialector = mysql.Open(mysqlDSN)
	} else if sqliteFile != "" {
		dialector = sqlite.Open(sqliteFile)
	} else {
		return nil, errors.New("no database configured, set MYSQL_DSN or SQLITE_FILE")
	}
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func Init() {
	db, err := Open(config.MYSQL_DSN, config.SQLITE_FILE)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}
