package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"go.uber.org/zap"
)

// NewMySQLInventoryRepository connects to MySQL and creates the tables.
// dsn must include parseTime=true, e.g. "user:pass@tcp(host:3306)/db?parseTime=true".
func NewMySQLInventoryRepository(dsn string, logger *zap.Logger) (*SQLInventoryRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}
	return openPooled(db, mysqlDialect, logger)
}
