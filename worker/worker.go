package worker

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/dal"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// Worker provisions the DynamoDB tables on a cron schedule. A run holds the
// lock file for its whole duration and records its outcome in the status file.
type Worker struct {
	config      *models.WorkerConfig
	provisioner *TableProvisioner
	locks       *LockManager
	status      *StatusManager
	cronJob     *cron.Cron
	ownerID     string
	logger      logger.Logger
	running     atomic.Bool
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewWorker builds a worker from the application config
func NewWorker(cfg *models.Config, db dal.TableManager, log logger.Logger) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	workerConfig := &models.WorkerConfig{
		CronSchedule:   cfg.ProvisionCronSchedule,
		LockTimeout:    10 * time.Minute,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		TableWaitDelay: 2 * time.Minute,
		Environment:    cfg.AppEnv,
		LockFilePath:   cfg.ProvisionLockPath,
		StatusFilePath: cfg.ProvisionStatusPath,
	}
	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	provisioner := NewTableProvisioner(db, cfg, log, workerConfig.TableWaitDelay)
	workerConfig.RequiredTables = provisioner.BaseTables()

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	return &Worker{
		config:      workerConfig,
		provisioner: provisioner,
		locks:       NewLockManager(workerConfig.LockFilePath, workerConfig.LockTimeout, workerConfig.Environment),
		status:      NewStatusManager(workerConfig.StatusFilePath),
		ownerID:     fmt.Sprintf("worker-%s-%s", hostname, uuid.New().String()[:8]),
		logger:      log.WithFields(map[string]interface{}{"component": "provisioner"}),
		sleep:       sleepContext,
	}, nil
}

func validateWorkerConfig(config *models.WorkerConfig) error {
	if config.CronSchedule == "" {
		return errors.New("cron schedule is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(config.CronSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", config.CronSchedule, err)
	}
	if config.LockFilePath == "" || config.StatusFilePath == "" {
		return errors.New("lock and status file paths are required")
	}
	if config.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	return nil
}

// RunOnce provisions every required table. Failed attempts are retried with
// exponential backoff up to MaxRetries.
func (w *Worker) RunOnce(ctx context.Context) (*models.ExecutionResult, error) {
	if !w.running.CompareAndSwap(false, true) {
		return nil, errors.New("provisioning run already in progress")
	}
	defer w.running.Store(false)

	if err := w.locks.CleanupExpiredLocks(); err != nil {
		w.logger.Warnf("Failed to clean up expired lock: %v", err)
	}
	lock, err := w.locks.AcquireLock(w.ownerID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.locks.ReleaseLock(lock); err != nil {
			w.logger.Warnf("Failed to release provisioning lock: %v", err)
		}
	}()

	result, err := w.status.Begin(w.config.Environment)
	if err != nil {
		return nil, err
	}

	var runErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := w.retryDelay(attempt)
			w.logger.Infof("Retrying table provisioning in %v (attempt %d/%d)", delay, attempt+1, w.config.MaxRetries+1)
			if err := w.status.IncrementRetryCount(result); err != nil {
				w.logger.Warnf("Failed to save provisioning status: %v", err)
			}
			if err := w.sleep(ctx, delay); err != nil {
				runErr = err
				break
			}
		}

		if runErr = w.provisionAll(ctx, result); runErr == nil {
			break
		}
		w.logger.Errorf("Provisioning attempt %d failed: %v", attempt+1, runErr)
	}

	if runErr != nil {
		if err := w.status.MarkFailed(result, runErr.Error()); err != nil {
			w.logger.Warnf("Failed to save provisioning status: %v", err)
		}
		return result, runErr
	}

	if err := w.status.MarkCompleted(result); err != nil {
		return result, err
	}
	w.logger.Infof("Provisioning completed for %d tables in %v", len(result.TablesCreated), result.Duration)
	return result, nil
}

func (w *Worker) provisionAll(ctx context.Context, result *models.ExecutionResult) error {
	if err := w.status.SetStatus(result, models.StatusCreatingTables); err != nil {
		return err
	}
	for _, base := range w.config.RequiredTables {
		table, err := w.provisioner.EnsureTable(ctx, base)
		if recErr := w.status.RecordTable(result, table); recErr != nil {
			w.logger.Warnf("Failed to save provisioning status: %v", recErr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) retryDelay(attempt int) time.Duration {
	return w.config.RetryDelay * time.Duration(1<<uint(attempt-1))
}

// Start runs provisioning once and then on the configured schedule
func (w *Worker) Start(ctx context.Context) error {
	w.cronJob = cron.New()
	err := w.cronJob.AddFunc(w.config.CronSchedule, func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Errorf("Scheduled provisioning failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule provisioning: %w", err)
	}

	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Errorf("Initial provisioning failed: %v", err)
	}

	w.cronJob.Start()
	w.logger.Infof("Provisioning worker started (schedule=%s, owner=%s)", w.config.CronSchedule, w.ownerID)
	return nil
}

// Stop halts the schedule. A run already in progress finishes on its own.
func (w *Worker) Stop() {
	if w.cronJob != nil {
		w.cronJob.Stop()
	}
	w.logger.Info("Provisioning worker stopped")
}

// IsRunning reports whether a provisioning run is in progress
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// GetStatus returns the last persisted run
func (w *Worker) GetStatus() (*models.ExecutionResult, error) {
	return w.status.LoadStatus()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
