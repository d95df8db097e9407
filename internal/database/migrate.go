package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"postboard/internal/middleware"

	"gorm.io/gorm"
)

// ErrMissingDependency is returned when a step references a table that does not exist yet.
var ErrMissingDependency = errors.New("referenced table does not exist")

// Migration is one versioned schema change made of ordered steps.
type Migration struct {
	Version int
	Name    string
	Steps   []Step
}

// Step is a single reversible schema change. Apply must tolerate its target
// already existing; Revert must tolerate it being gone.
type Step interface {
	Apply(tx *gorm.DB) error
	Revert(tx *gorm.DB) error
	Describe() string
}

func (m Migration) apply(tx *gorm.DB) error {
	for _, step := range m.Steps {
		middleware.Logger.Debug("Applying migration step", slog.Int("version", m.Version), slog.String("step", step.Describe()))
		if err := step.Apply(tx); err != nil {
			return fmt.Errorf("%s: %w", step.Describe(), err)
		}
	}
	return nil
}

func (m Migration) revert(tx *gorm.DB) error {
	for i := len(m.Steps) - 1; i >= 0; i-- {
		step := m.Steps[i]
		middleware.Logger.Debug("Reverting migration step", slog.Int("version", m.Version), slog.String("step", step.Describe()))
		if err := step.Revert(tx); err != nil {
			return fmt.Errorf("%s: %w", step.Describe(), err)
		}
	}
	return nil
}

// ColumnType is the portable type of a column.
type ColumnType int

const (
	Integer ColumnType = iota
	String
	Timestamp
)

// Column describes one table column. PrimaryKey implies an auto-increment integer.
type Column struct {
	Name        string
	Type        ColumnType
	PrimaryKey  bool
	NotNull     bool
	DefaultNull bool
}

// ReferentialAction is the ON UPDATE / ON DELETE behaviour of a foreign key.
type ReferentialAction string

const (
	NoAction ReferentialAction = "NO ACTION"
	Restrict ReferentialAction = "RESTRICT"
	Cascade  ReferentialAction = "CASCADE"
	SetNull  ReferentialAction = "SET NULL"
)

// ForeignKey constrains Column to values of RefTable.RefColumn.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
	OnUpdate  ReferentialAction
	OnDelete  ReferentialAction
}

// CreateTable creates a table with its columns and foreign keys.
type CreateTable struct {
	Table       string
	Columns     []Column
	ForeignKeys []ForeignKey
}

func (s CreateTable) Describe() string { return "create table " + s.Table }

func (s CreateTable) Apply(tx *gorm.DB) error {
	if tx.Migrator().HasTable(s.Table) {
		middleware.Logger.Info("Table already exists, skipping", slog.String("table", s.Table))
		return nil
	}
	// SQLite accepts dangling references at DDL time, so check them here.
	for _, fk := range s.ForeignKeys {
		if !tx.Migrator().HasTable(fk.RefTable) {
			return fmt.Errorf("%w: %s references %s", ErrMissingDependency, s.Table, fk.RefTable)
		}
	}
	return tx.Exec(s.sql(tx.Dialector.Name())).Error
}

func (s CreateTable) Revert(tx *gorm.DB) error {
	return tx.Exec("DROP TABLE IF EXISTS " + quote(s.Table)).Error
}

func (s CreateTable) sql(dialect string) string {
	defs := make([]string, 0, len(s.Columns)+len(s.ForeignKeys))
	for _, col := range s.Columns {
		defs = append(defs, columnSQL(dialect, col))
	}
	for _, fk := range s.ForeignKeys {
		defs = append(defs, foreignKeySQL(fk))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(s.Table), strings.Join(defs, ",\n\t"))
}

// AddColumn adds a column to an existing table.
type AddColumn struct {
	Table  string
	Column Column
}

func (s AddColumn) Describe() string { return fmt.Sprintf("add column %s.%s", s.Table, s.Column.Name) }

func (s AddColumn) Apply(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(s.Table) {
		return fmt.Errorf("%w: %s", ErrMissingDependency, s.Table)
	}
	if tx.Migrator().HasColumn(s.Table, s.Column.Name) {
		middleware.Logger.Info("Column already exists, skipping", slog.String("table", s.Table), slog.String("column", s.Column.Name))
		return nil
	}
	return tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(s.Table), columnSQL(tx.Dialector.Name(), s.Column))).Error
}

func (s AddColumn) Revert(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(s.Table) || !tx.Migrator().HasColumn(s.Table, s.Column.Name) {
		return nil
	}
	return tx.Exec(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(s.Table), quote(s.Column.Name))).Error
}

// CreateIndex adds a non-unique index over Columns of Table.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []string
}

func (s CreateIndex) Describe() string { return "create index " + s.Name }

func (s CreateIndex) Apply(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(s.Table) {
		return fmt.Errorf("%w: %s", ErrMissingDependency, s.Table)
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quote(c)
	}
	return tx.Exec(fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", quote(s.Name), quote(s.Table), strings.Join(cols, ", "))).Error
}

func (s CreateIndex) Revert(tx *gorm.DB) error {
	return tx.Exec("DROP INDEX IF EXISTS " + quote(s.Name)).Error
}

func columnSQL(dialect string, col Column) string {
	if col.PrimaryKey {
		if dialect == DialectPostgres {
			return quote(col.Name) + " SERIAL PRIMARY KEY"
		}
		return quote(col.Name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	def := quote(col.Name) + " " + typeSQL(dialect, col.Type)
	if col.NotNull {
		def += " NOT NULL"
	}
	if col.DefaultNull && !col.NotNull {
		def += " DEFAULT NULL"
	}
	return def
}

func typeSQL(dialect string, t ColumnType) string {
	switch t {
	case String:
		if dialect == DialectPostgres {
			return "VARCHAR"
		}
		return "TEXT"
	case Timestamp:
		if dialect == DialectPostgres {
			return "TIMESTAMPTZ"
		}
		return "DATETIME"
	default:
		return "INTEGER"
	}
}

func foreignKeySQL(fk ForeignKey) string {
	def := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quote(fk.Name), quote(fk.Column), quote(fk.RefTable), quote(fk.RefColumn))
	if fk.OnUpdate != "" {
		def += " ON UPDATE " + string(fk.OnUpdate)
	}
	if fk.OnDelete != "" {
		def += " ON DELETE " + string(fk.OnDelete)
	}
	return def
}

// quote wraps an identifier in ANSI double quotes, which both SQLite and PostgreSQL accept.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
