package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

// MigrationLog represents a record of an applied migration in the database.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationError reports the migration that failed and in which direction.
type MigrationError struct {
	Version   int
	Name      string
	Direction string
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %06d_%s %s failed: %v", e.Version, e.Name, e.Direction, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MigrationStatus describes one registered migration and whether it is applied.
type MigrationStatus struct {
	Version   int        `json:"version" yaml:"version"`
	Name      string     `json:"name" yaml:"name"`
	Applied   bool       `json:"applied" yaml:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

// Runner applies and reverts migrations, tracking them in migration_logs.
type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

// NewRunner sorts migrations by version and rejects duplicate or non-positive versions.
func NewRunner(db *gorm.DB, migrations ...Migration) (*Runner, error) {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	for i, m := range sorted {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q has invalid version %d", m.Name, m.Version)
		}
		if i > 0 && sorted[i-1].Version == m.Version {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", m.Version, sorted[i-1].Name, m.Name)
		}
	}

	return &Runner{db: db, migrations: sorted}, nil
}

// Up applies every pending migration in ascending version order. Each migration
// and its log record commit together; the first failure aborts the run.
func (r *Runner) Up(ctx context.Context) error {
	applied, err := r.prepare(ctx)
	if err != nil {
		return err
	}

	for _, m := range r.migrations {
		if _, ok := applied[m.Version]; ok {
			middleware.Logger.Debug("Migration already applied", slog.Int("version", m.Version), slog.String("name", m.Name))
			continue
		}

		middleware.Logger.Info("Applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return &MigrationError{Version: m.Version, Name: m.Name, Direction: "up", Err: err}
		}

		observability.MigrationsApplied.WithLabelValues("up").Inc()
		middleware.Logger.Info("Migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
	}

	return nil
}

// Down reverts applied migrations with a version greater than target, newest
// first. A target of 0 reverts everything.
func (r *Runner) Down(ctx context.Context, target int) error {
	if target < 0 {
		return fmt.Errorf("invalid target version %d", target)
	}
	if target != 0 && r.find(target) == nil {
		return fmt.Errorf("migration version %d not found", target)
	}

	applied, err := r.prepare(ctx)
	if err != nil {
		return err
	}

	for i := len(r.migrations) - 1; i >= 0; i-- {
		m := r.migrations[i]
		if m.Version <= target {
			break
		}
		if _, ok := applied[m.Version]; !ok {
			continue
		}

		middleware.Logger.Info("Rolling back migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.revert(tx); err != nil {
				return err
			}
			return tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error
		})
		if err != nil {
			return &MigrationError{Version: m.Version, Name: m.Name, Direction: "down", Err: err}
		}

		observability.MigrationsApplied.WithLabelValues("down").Inc()
		middleware.Logger.Info("Migration rolled back", slog.Int("version", m.Version), slog.String("name", m.Name))
	}

	return nil
}

// Status lists every registered migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := r.ensureLogTable(ctx); err != nil {
		return nil, err
	}

	logs, err := r.appliedLogs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, 0, len(r.migrations))
	for _, m := range r.migrations {
		st := MigrationStatus{Version: m.Version, Name: m.Name}
		if log, ok := logs[m.Version]; ok {
			at := log.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// CurrentVersion returns the highest applied version, or 0 for an empty store.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureLogTable(ctx); err != nil {
		return 0, err
	}
	var version int
	err := r.db.WithContext(ctx).Model(&MigrationLog{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read current version: %w", err)
	}
	return version, nil
}

func (r *Runner) prepare(ctx context.Context) (map[int]MigrationLog, error) {
	if err := r.ensureLogTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.appliedLogs(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	if err := validateAppliedVersions(versions, r.migrations); err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *Runner) ensureLogTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}
	return nil
}

func (r *Runner) appliedLogs(ctx context.Context) (map[int]MigrationLog, error) {
	var logs []MigrationLog
	if err := r.db.WithContext(ctx).Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	applied := make(map[int]MigrationLog, len(logs))
	for _, l := range logs {
		applied[l.Version] = l
	}
	return applied, nil
}

func (r *Runner) find(version int) *Migration {
	for i := range r.migrations {
		if r.migrations[i].Version == version {
			return &r.migrations[i]
		}
	}
	return nil
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	if len(applied) == 0 {
		return nil
	}
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []int
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf(
		"migration_logs contains unknown versions not present in code: %s",
		strings.Join(parts, ", "),
	)
}
