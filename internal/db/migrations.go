package db

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	embeddedmigrations "github.com/terraincognita07/crewdesk/migrations"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_[\w-]+\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

// Migration is one embedded SQL file split into statements.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

type schemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// ApplyMigrations runs every embedded migration not yet recorded in
// schema_migrations and returns the file names it ran. Each file runs in its
// own transaction.
func ApplyMigrations(ctx context.Context, database *gorm.DB) ([]string, error) {
	migrations, err := EmbeddedMigrations()
	if err != nil {
		return nil, err
	}

	database = database.WithContext(ctx)
	if err := database.AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}

	var recorded []int
	if err := database.Model(&schemaMigration{}).Pluck("version", &recorded).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[int]bool, len(recorded))
	for _, version := range recorded {
		done[version] = true
	}

	var applied []string
	for _, migration := range migrations {
		if done[migration.Version] {
			continue
		}
		if err := applyMigration(database, migration); err != nil {
			return applied, err
		}
		applied = append(applied, migration.Name)
	}
	return applied, nil
}

func EmbeddedMigrations() ([]Migration, error) {
	return parseMigrations(embeddedmigrations.Files)
}

func parseMigrations(source fs.FS) ([]Migration, error) {
	names, err := fs.Glob(source, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(names))
	owners := make(map[int]string, len(names))
	for _, name := range names {
		match := migrationNamePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
		if owner, taken := owners[version]; taken {
			return nil, fmt.Errorf("migrations %s and %s share version %d", owner, name, version)
		}
		owners[version] = name

		raw, err := fs.ReadFile(source, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		statements := splitStatements(string(raw))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no statements", name)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, Statements: statements})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func applyMigration(database *gorm.DB, migration Migration) error {
	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			if columnAlreadyPresent(tx, statement) {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %q: %w", migration.Name, statement, err)
			}
		}
		record := schemaMigration{Version: migration.Version, Name: migration.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

// columnAlreadyPresent lets ADD COLUMN statements replay against a schema
// that already has the column.
func columnAlreadyPresent(tx *gorm.DB, statement string) bool {
	match := addColumnPattern.FindStringSubmatch(statement)
	if match == nil {
		return false
	}
	return tx.Migrator().HasColumn(unquoteIdentifier(match[1]), unquoteIdentifier(match[2]))
}

// splitStatements breaks a file on semicolons after dropping "--" comment
// lines. Statements must not contain literal semicolons.
func splitStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	var statements []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
