package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Infof("Connected to MySQL database")
	return db, nil
}

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS campaign_runs (
		id VARCHAR(36) PRIMARY KEY,
		trigger_source VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		message TEXT NOT NULL,
		sent_count INT NOT NULL DEFAULT 0,
		failed_count INT NOT NULL DEFAULT 0,
		last_error TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		INDEX idx_campaign_runs_started_at (started_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`,
	`
	CREATE TABLE IF NOT EXISTS delivery_attempts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		email VARCHAR(320) NOT NULL,
		status VARCHAR(20) NOT NULL,
		status_code INT NOT NULL DEFAULT 0,
		error TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_delivery_attempts_run_id (run_id),
		CONSTRAINT fk_delivery_attempts_run FOREIGN KEY (run_id) REFERENCES campaign_runs (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`,
}

func RunMigrations(db *sqlx.DB) error {
	for i, schema := range migrations {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}
