package health

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// MemoryStorage always reports healthy; the in-process store cannot become unreachable.
func MemoryStorage() Checker {
	return NewFuncChecker("storage", func(context.Context) error { return nil })
}

// GormStorage pings the database behind db.
func GormStorage(db *gorm.DB) Checker {
	return NewFuncChecker("storage", func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}
