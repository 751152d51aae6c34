package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

// Schema holds every staylens table and type.
const Schema = "staylens"

//go:embed sql/pre_automigrate.sql
var preAutoMigrateSQL string

//go:embed sql/post_automigrate.sql
var postAutoMigrateSQL string

type migrationScript struct {
	name string
	sql  string
}

// autoMigrate creates the schema and enum, lets GORM shape the tables, then adds
// the indexes and foreign keys GORM cannot express.
func (p *Pool) autoMigrate(ctx context.Context) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	if err := runMigrationScripts(ctx, p, migrationScript{name: "pre-auto-migrate", sql: preAutoMigrateSQL}); err != nil {
		return err
	}
	if err := p.gdb.WithContext(ctx).AutoMigrate(autoMigrateModels()...); err != nil {
		return fmt.Errorf("gorm auto-migrate translation models: %w", err)
	}
	return runMigrationScripts(ctx, p, migrationScript{name: "post-auto-migrate", sql: postAutoMigrateSQL})
}

func runMigrationScripts(ctx context.Context, p *Pool, scripts ...migrationScript) error {
	for _, script := range scripts {
		trimmed := strings.TrimSpace(script.sql)
		if trimmed == "" {
			continue
		}
		if err := p.gdb.WithContext(ctx).Exec(trimmed).Error; err != nil {
			return fmt.Errorf("execute %s SQL: %w", script.name, err)
		}
	}
	return nil
}
