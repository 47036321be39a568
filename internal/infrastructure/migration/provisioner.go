package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Tenant DDL template file names, resolved under <migrationsDir>/tenant/.
const (
	tenantUpFile   = "tenant_schema.up.sql"
	tenantDownFile = "tenant_schema.down.sql"
)

// SchemaProvisioner creates and migrates per-tenant Postgres schemas.
// Each tenant gets its own schema populated from a DDL template; the
// down template drops the tenant-scoped objects again.
type SchemaProvisioner struct {
	db          *sql.DB
	templateDir string
	logger      *zap.Logger
}

// NewSchemaProvisioner creates a SchemaProvisioner reading templates from
// the tenant/ subdirectory of the migrations path
func NewSchemaProvisioner(db *sql.DB, migrationsPath string, logger *zap.Logger) *SchemaProvisioner {
	return &SchemaProvisioner{
		db:          db,
		templateDir: filepath.Join(migrationsPath, "tenant"),
		logger:      logger,
	}
}

// TenantMigrationResult reports the outcome of a multi-schema run.
// Failed schemas do not stop the run; they are collected here so the
// operator can retry them individually.
type TenantMigrationResult struct {
	Applied  []string
	Failures map[string]error
}

// Err returns a summary error if any schema failed
func (r *TenantMigrationResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	failed := make([]string, 0, len(r.Failures))
	for schema := range r.Failures {
		failed = append(failed, schema)
	}
	return fmt.Errorf("tenant migration failed for %d of %d schemas: %s",
		len(r.Failures), len(r.Failures)+len(r.Applied), strings.Join(failed, ", "))
}

// ProvisionSchema creates the tenant's schema and applies the up template.
// It is idempotent: the schema is created IF NOT EXISTS and the template
// is expected to guard its objects the same way.
func (p *SchemaProvisioner) ProvisionSchema(ctx context.Context, schemaName string) error {
	p.logger.Info("Provisioning tenant schema", zap.String("schema", schemaName))

	if _, err := p.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schemaName)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schemaName, err)
	}
	return p.ApplyUp(ctx, schemaName)
}

// ApplyUp runs the up template against a single tenant schema
func (p *SchemaProvisioner) ApplyUp(ctx context.Context, schemaName string) error {
	return p.applyTemplate(ctx, schemaName, tenantUpFile)
}

// ApplyDown runs the down template against a single tenant schema
func (p *SchemaProvisioner) ApplyDown(ctx context.Context, schemaName string) error {
	return p.applyTemplate(ctx, schemaName, tenantDownFile)
}

// UpAll applies the up template to every schema, sequentially. A schema
// failure is recorded and the loop continues with the next schema; there
// is no cross-schema transaction.
func (p *SchemaProvisioner) UpAll(ctx context.Context, schemas []string) *TenantMigrationResult {
	return p.applyAll(ctx, schemas, tenantUpFile)
}

// DownAll applies the down template to every schema, sequentially
func (p *SchemaProvisioner) DownAll(ctx context.Context, schemas []string) *TenantMigrationResult {
	return p.applyAll(ctx, schemas, tenantDownFile)
}

func (p *SchemaProvisioner) applyAll(ctx context.Context, schemas []string, templateFile string) *TenantMigrationResult {
	result := &TenantMigrationResult{
		Applied:  make([]string, 0, len(schemas)),
		Failures: make(map[string]error),
	}

	for _, schema := range schemas {
		if err := p.applyTemplate(ctx, schema, templateFile); err != nil {
			p.logger.Error("Tenant schema migration failed",
				zap.String("schema", schema),
				zap.String("template", templateFile),
				zap.Error(err),
			)
			result.Failures[schema] = err
			continue
		}
		result.Applied = append(result.Applied, schema)
	}

	p.logger.Info("Tenant schema migration run finished",
		zap.String("template", templateFile),
		zap.Int("applied", len(result.Applied)),
		zap.Int("failed", len(result.Failures)),
	)

	return result
}

// applyTemplate executes the template's statements one by one with the
// search path pointed at the tenant schema. Statements run on a single
// pinned connection so the search path survives across them.
func (p *SchemaProvisioner) applyTemplate(ctx context.Context, schemaName, templateFile string) error {
	statements, err := p.loadStatements(templateFile)
	if err != nil {
		return err
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET search_path TO "+pq.QuoteIdentifier(schemaName)+", public"); err != nil {
		return fmt.Errorf("failed to set search path to %s: %w", schemaName, err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, "SET search_path TO public")
	}()

	for i, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d of %s failed in schema %s: %w", i+1, templateFile, schemaName, err)
		}
	}

	p.logger.Debug("Applied tenant DDL template",
		zap.String("schema", schemaName),
		zap.String("template", templateFile),
		zap.Int("statements", len(statements)),
	)

	return nil
}

// loadStatements reads a template file and splits it into executable
// statements
func (p *SchemaProvisioner) loadStatements(templateFile string) ([]string, error) {
	path := filepath.Join(p.templateDir, templateFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant DDL template %s: %w", path, err)
	}

	statements := SplitStatements(string(raw))
	if len(statements) == 0 {
		return nil, fmt.Errorf("tenant DDL template %s contains no statements", path)
	}
	return statements, nil
}

// SplitStatements splits a SQL script into individual statements.
// Line comments are stripped; statements are separated by semicolons at
// the end of a line. Dollar-quoted function bodies are not supported in
// tenant templates.
func SplitStatements(script string) []string {
	var cleaned []string
	for _, line := range strings.Split(script, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		cleaned = append(cleaned, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
