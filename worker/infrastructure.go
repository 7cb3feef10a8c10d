package worker

import (
	"context"
	"fmt"
	"kodikas-backend/dal"
	"kodikas-backend/infrastructure"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	tableStatusExists = "EXISTS"
	tableStatusActive = "ACTIVE"
	tableStatusFailed = "FAILED"
)

// TableProvisioner creates the DynamoDB tables the store needs from the
// embedded schemas
type TableProvisioner struct {
	db           dal.TableManager
	config       *models.Config
	logger       logger.Logger
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewTableProvisioner creates a provisioner. waitTimeout bounds how long a
// new table may stay in CREATING.
func NewTableProvisioner(db dal.TableManager, cfg *models.Config, log logger.Logger, waitTimeout time.Duration) *TableProvisioner {
	return &TableProvisioner{
		db:           db,
		config:       cfg,
		logger:       log,
		pollInterval: 2 * time.Second,
		waitTimeout:  waitTimeout,
	}
}

// BaseTables returns the configured base table names, or every schema when
// none are configured
func (p *TableProvisioner) BaseTables() []string {
	if len(p.config.Tables) > 0 {
		return p.config.Tables
	}
	return infrastructure.SchemaNames()
}

// EnsureTable creates baseName under its prefixed name when it is missing
// and waits for it to become active
func (p *TableProvisioner) EnsureTable(ctx context.Context, baseName string) (models.TableStatus, error) {
	tableName := p.config.TableName(baseName)
	status := models.TableStatus{Name: tableName}

	exists, err := p.tableExists(ctx, tableName)
	if err != nil {
		status.Status = tableStatusFailed
		return status, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	if exists {
		p.logger.Debugf("Table %s already exists, skipping creation", tableName)
		status.Status = tableStatusExists
		return status, nil
	}

	input, err := infrastructure.GetTables(baseName, tableName)
	if err != nil {
		status.Status = tableStatusFailed
		return status, err
	}

	p.logger.Infof("Creating table %s", tableName)
	if err := p.db.CreateTable(ctx, input); err != nil {
		status.Status = tableStatusFailed
		return status, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	status.CreatedAt = time.Now()

	if err := p.waitForActive(ctx, tableName); err != nil {
		status.Status = tableStatusFailed
		return status, err
	}

	p.logger.Infof("Table %s is active", tableName)
	status.Status = tableStatusActive
	return status, nil
}

func (p *TableProvisioner) tableExists(ctx context.Context, tableName string) (bool, error) {
	if _, err := p.db.DescribeTable(ctx, tableName); err != nil {
		if dal.IsResourceNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *TableProvisioner) waitForActive(ctx context.Context, tableName string) error {
	ctx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		out, err := p.db.DescribeTable(ctx, tableName)
		if err != nil && !dal.IsResourceNotFound(err) {
			return fmt.Errorf("failed to describe table %s: %w", tableName, err)
		}
		if err == nil && out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("table %s did not become active: %w", tableName, ctx.Err())
		case <-ticker.C:
		}
	}
}
