// connection.go
//
// Portfolio, engagement and messaging API for the DesignerHub platform
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of designerhub.
// designerhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// designerhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with designerhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	glebarez "github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/models"
	mssql "github.com/microsoft/go-mssqldb"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Dialector builds the GORM dialector for the configured DB_TYPE
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := mysqldriver.NewConfig()
		dsn.User = cfg.DBUser
		dsn.Passwd = cfg.DBPassword
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		dsn.DBName = cfg.DBDatabase
		dsn.ParseTime = true
		dsn.Loc = time.UTC
		dsn.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(dsn.FormatDSN()), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		return sqlite.Open(cfg.DBDatabase), nil

	case "sqlite-nocgo":
		return glebarez.Open(cfg.DBDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.DBLogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	limit := cfg.DBConnectionLimit
	if limit < 1 {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	slog.Info("connected to database", "type", cfg.DBType, "database", cfg.DBDatabase)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.PasswordResetToken{},
		&models.Category{},
		&models.Work{},
		&models.ViewRecord{},
		&models.Review{},
		&models.Favorite{},
		&models.FavoriteWork{},
		&models.Like{},
		&models.LikeWork{},
		&models.Profile{},
		&models.SocialLink{},
		&models.ContactEntry{},
		&models.Chat{},
		&models.Message{},
	); err != nil {
		return err
	}
	if db.Dialector.Name() == "sqlserver" {
		return filterNullableUniqueIndexes(db)
	}
	return nil
}

// nullableUniqueIndex is a unique index over a column that may hold NULL.
// SQL Server counts NULLs as duplicates there, so it gets a filtered index instead.
type nullableUniqueIndex struct {
	model  any
	table  string
	name   string
	column string
}

var nullableUniqueIndexes = []nullableUniqueIndex{
	{model: &models.Work{}, table: "works", name: "idx_works_title", column: "title"},
}

func filteredUniqueIndexSQL(idx nullableUniqueIndex) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE %s IS NOT NULL", idx.name, idx.table, idx.column, idx.column)
}

func filterNullableUniqueIndexes(db *gorm.DB) error {
	for _, idx := range nullableUniqueIndexes {
		var filtered int64
		err := db.Raw("SELECT COUNT(*) FROM sys.indexes WHERE name = ? AND has_filter = 1", idx.name).Scan(&filtered).Error
		if err != nil {
			return fmt.Errorf("inspect index %s: %w", idx.name, err)
		}
		if filtered > 0 {
			continue
		}
		if db.Migrator().HasIndex(idx.model, idx.name) {
			if err := db.Migrator().DropIndex(idx.model, idx.name); err != nil {
				return fmt.Errorf("drop index %s: %w", idx.name, err)
			}
		}
		if err := db.Exec(filteredUniqueIndexSQL(idx)).Error; err != nil {
			return fmt.Errorf("create filtered index %s: %w", idx.name, err)
		}
		slog.Info("filtered unique index created", "index", idx.name)
	}
	return nil
}

// SeedCategories inserts any of the named categories that are missing
func SeedCategories(db *gorm.DB, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			categories = append(categories, models.Category{Name: name})
		}
	}
	if len(categories) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&categories)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// IsUniqueViolation reports whether err came from a unique index or primary key collision.
// GORM translates most drivers' errors to gorm.ErrDuplicatedKey; the driver codes are
// checked as well for dialectors that do not.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == 2627 || msErr.Number == 2601
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
