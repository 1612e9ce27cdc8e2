package repository

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610190001_last_login",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&model.User{}, "last_login_at") {
					return nil
				}
				return tx.Migrator().AddColumn(&model.User{}, "LastLoginAt")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&model.User{}, "last_login_at")
			},
		},
		{
			ID: "202610190002_additional_file_stored_content",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&model.AdditionalFile{}, "stored_content") {
					return nil
				}
				return tx.Migrator().AddColumn(&model.AdditionalFile{}, "StoredContent")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&model.AdditionalFile{}, "stored_content")
			},
		},
	}
}

// Migrate brings the schema up to date. A clean database gets the full schema in one step.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&model.User{},
			&model.Performance{},
			&model.Role{},
			&model.Application{},
			&model.Lesson{},
			&model.FileRecord{},
			&model.AdditionalFile{},
		)
	})
	return m.Migrate()
}
