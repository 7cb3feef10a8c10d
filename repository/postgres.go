package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// uniqueConstraints maps constraint names from the migrations to the
// duplicate field they protect
var uniqueConstraints = map[string]models.DuplicateError{
	"organizations_name_unique": {Entity: models.EntityOrganization, Field: "name"},
	"members_name_unique":       {Entity: models.EntityMember, Field: "name"},
	"members_email_unique":      {Entity: models.EntityMember, Field: "email"},
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists records in PostgreSQL. Transactions run at
// SERIALIZABLE isolation and are retried on serialization failures.
type PostgresStore struct {
	pgReader
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  logger.Logger
}

// NewPostgresStore opens a connection pool and verifies it with a ping
func NewPostgresStore(ctx context.Context, cfg *models.Config, log logger.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.PostgresMaxConns > 0 {
		poolCfg.MaxConns = cfg.PostgresMaxConns
	}
	if cfg.PostgresMinConns > 0 {
		poolCfg.MinConns = cfg.PostgresMinConns
	}

	connectTimeout := cfg.PostgresQueryTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pool: %w", err)
	}

	log.Infof("PostgreSQL pool ready (max_conns=%d)", poolCfg.MaxConns)
	return &PostgresStore{
		pgReader: pgReader{q: pool},
		pool:     pool,
		timeout:  cfg.PostgresQueryTimeout,
		logger:   log,
	}, nil
}

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, dsn string, log logger.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open sql: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	log.Infof("Database schema at version %d", version)
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !isRetryable(err) {
			return err
		}
		s.logger.Warnf("Serialization failure, retrying (attempt %d/%d)", attempt, maxTransactAttempts)
	}
	return ErrConflict
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(tx Tx) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{pgReader{q: tx}}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// mapWriteError turns unique violations into DuplicateError
func mapWriteError(err error, value func(field string) string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if dup, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			dup.Value = value(dup.Field)
			return &dup
		}
	}
	return err
}

type pgReader struct {
	q querier
}

const (
	organizationColumns = `id, name, description, is_active, created_at, updated_at`
	memberColumns       = `id, name, email, password_hash, is_active, COALESCE(organization_id, ''), created_at, updated_at`
	projectColumns      = `id, name, description, is_active, member_id, COALESCE(organization_id, ''), created_at, updated_at`
	applicationColumns  = `id, name, description, status, is_active, member_id, COALESCE(project_id, ''), applied_at, updated_at`
)

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.IsActive, &m.OrganizationID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.IsActive, &p.MemberID, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Status, &a.IsActive, &a.MemberID, &a.ProjectID, &a.AppliedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func queryOne[T any](ctx context.Context, q querier, scan func(pgx.Row) (*T, error), sql string, args ...any) (*T, error) {
	row, err := scan(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return row, err
}

func queryAll[T any](ctx context.Context, q querier, scan func(pgx.Row) (*T, error), sql string, args ...any) ([]*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *pgReader) linkIDs(ctx context.Context, sql, id string) ([]string, error) {
	rows, err := r.q.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *pgReader) withOrganizationLinks(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	var err error
	if org.MemberIDs, err = r.linkIDs(ctx, `SELECT id FROM members WHERE organization_id = $1 ORDER BY seq`, org.ID); err != nil {
		return nil, err
	}
	if org.ProjectIDs, err = r.linkIDs(ctx, `SELECT id FROM projects WHERE organization_id = $1 ORDER BY seq`, org.ID); err != nil {
		return nil, err
	}
	return org, nil
}

func (r *pgReader) withMemberLinks(ctx context.Context, member *models.Member) (*models.Member, error) {
	var err error
	if member.ProjectIDs, err = r.linkIDs(ctx, `SELECT id FROM projects WHERE member_id = $1 ORDER BY seq`, member.ID); err != nil {
		return nil, err
	}
	if member.ApplicationIDs, err = r.linkIDs(ctx, `SELECT id FROM applications WHERE member_id = $1 ORDER BY seq`, member.ID); err != nil {
		return nil, err
	}
	return member, nil
}

func (r *pgReader) organizationWhere(ctx context.Context, where string, arg any) (*models.Organization, error) {
	org, err := queryOne(ctx, r.q, scanOrganization, `SELECT `+organizationColumns+` FROM organizations WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	return r.withOrganizationLinks(ctx, org)
}

func (r *pgReader) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return r.organizationWhere(ctx, `id = $1`, id)
}

func (r *pgReader) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	return r.organizationWhere(ctx, `name = $1`, name)
}

func (r *pgReader) ListActiveOrganizations(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := queryAll(ctx, r.q, scanOrganization, `SELECT `+organizationColumns+` FROM organizations WHERE is_active ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for _, org := range orgs {
		if _, err := r.withOrganizationLinks(ctx, org); err != nil {
			return nil, err
		}
	}
	return orgs, nil
}

func (r *pgReader) memberWhere(ctx context.Context, where string, arg any) (*models.Member, error) {
	member, err := queryOne(ctx, r.q, scanMember, `SELECT `+memberColumns+` FROM members WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	return r.withMemberLinks(ctx, member)
}

func (r *pgReader) FindMember(ctx context.Context, id string) (*models.Member, error) {
	return r.memberWhere(ctx, `id = $1`, id)
}

func (r *pgReader) FindMemberByName(ctx context.Context, name string) (*models.Member, error) {
	return r.memberWhere(ctx, `name = $1`, name)
}

func (r *pgReader) FindMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return r.memberWhere(ctx, `email = $1`, email)
}

func (r *pgReader) membersWhere(ctx context.Context, where string, args ...any) ([]*models.Member, error) {
	members, err := queryAll(ctx, r.q, scanMember, `SELECT `+memberColumns+` FROM members WHERE `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if _, err := r.withMemberLinks(ctx, member); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func (r *pgReader) ListActiveMembers(ctx context.Context) ([]*models.Member, error) {
	return r.membersWhere(ctx, `is_active`)
}

func (r *pgReader) MembersByOrganization(ctx context.Context, organizationID string) ([]*models.Member, error) {
	return r.membersWhere(ctx, `organization_id = $1`, organizationID)
}

func (r *pgReader) FindProject(ctx context.Context, id string) (*models.Project, error) {
	return queryOne(ctx, r.q, scanProject, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

func (r *pgReader) ListActiveProjects(ctx context.Context) ([]*models.Project, error) {
	return queryAll(ctx, r.q, scanProject, `SELECT `+projectColumns+` FROM projects WHERE is_active ORDER BY seq`)
}

func (r *pgReader) ProjectsByOrganization(ctx context.Context, organizationID string) ([]*models.Project, error) {
	return queryAll(ctx, r.q, scanProject, `SELECT `+projectColumns+` FROM projects WHERE organization_id = $1 ORDER BY seq`, organizationID)
}

func (r *pgReader) ProjectsByMember(ctx context.Context, memberID string) ([]*models.Project, error) {
	return queryAll(ctx, r.q, scanProject, `SELECT `+projectColumns+` FROM projects WHERE member_id = $1 ORDER BY seq`, memberID)
}

func (r *pgReader) FindApplication(ctx context.Context, id string) (*models.Application, error) {
	return queryOne(ctx, r.q, scanApplication, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
}

func (r *pgReader) ListActiveApplications(ctx context.Context) ([]*models.Application, error) {
	return queryAll(ctx, r.q, scanApplication, `SELECT `+applicationColumns+` FROM applications WHERE is_active ORDER BY seq`)
}

func (r *pgReader) ApplicationsByMember(ctx context.Context, memberID string) ([]*models.Application, error) {
	return queryAll(ctx, r.q, scanApplication, `SELECT `+applicationColumns+` FROM applications WHERE member_id = $1 ORDER BY seq`, memberID)
}

type pgTx struct {
	pgReader
}

func (t *pgTx) SaveOrganization(ctx context.Context, o *models.Organization) error {
	assignID(&o.ID)
	_, err := t.q.Exec(ctx, `
INSERT INTO organizations (id, name, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    is_active = EXCLUDED.is_active,
    updated_at = EXCLUDED.updated_at`,
		o.ID, o.Name, o.Description, o.IsActive, o.CreatedAt, o.UpdatedAt)
	return mapWriteError(err, func(string) string { return o.Name })
}

func (t *pgTx) SaveMember(ctx context.Context, m *models.Member) error {
	assignID(&m.ID)
	_, err := t.q.Exec(ctx, `
INSERT INTO members (id, name, email, password_hash, is_active, organization_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    email = EXCLUDED.email,
    password_hash = EXCLUDED.password_hash,
    is_active = EXCLUDED.is_active,
    organization_id = EXCLUDED.organization_id,
    updated_at = EXCLUDED.updated_at`,
		m.ID, m.Name, m.Email, m.PasswordHash, m.IsActive, m.OrganizationID, m.CreatedAt, m.UpdatedAt)
	return mapWriteError(err, func(field string) string {
		if field == "email" {
			return m.Email
		}
		return m.Name
	})
}

func (t *pgTx) SaveProject(ctx context.Context, p *models.Project) error {
	assignID(&p.ID)
	_, err := t.q.Exec(ctx, `
INSERT INTO projects (id, name, description, is_active, member_id, organization_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    is_active = EXCLUDED.is_active,
    member_id = EXCLUDED.member_id,
    organization_id = EXCLUDED.organization_id,
    updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Description, p.IsActive, p.MemberID, p.OrganizationID, p.CreatedAt, p.UpdatedAt)
	return err
}

func (t *pgTx) SaveApplication(ctx context.Context, a *models.Application) error {
	assignID(&a.ID)
	_, err := t.q.Exec(ctx, `
INSERT INTO applications (id, name, description, status, is_active, member_id, project_id, applied_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    status = EXCLUDED.status,
    is_active = EXCLUDED.is_active,
    member_id = EXCLUDED.member_id,
    project_id = EXCLUDED.project_id,
    updated_at = EXCLUDED.updated_at`,
		a.ID, a.Name, a.Description, string(a.Status), a.IsActive, a.MemberID, a.ProjectID, a.AppliedAt, a.UpdatedAt)
	return err
}

func (t *pgTx) DeactivateOrganization(ctx context.Context, o *models.Organization) error {
	tag, err := t.q.Exec(ctx, `
UPDATE organizations SET is_active = FALSE, updated_at = $2
WHERE id = $1
  AND is_active
  AND NOT EXISTS (SELECT 1 FROM members WHERE organization_id = $1)
  AND NOT EXISTS (SELECT 1 FROM projects WHERE organization_id = $1)`,
		o.ID, o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
