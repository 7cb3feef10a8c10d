package models

import "time"

// WorkerConfig holds configuration for the table provisioning worker
type WorkerConfig struct {
	CronSchedule   string        `json:"cron_schedule"`
	LockTimeout    time.Duration `json:"lock_timeout"`
	MaxRetries     int           `json:"max_retries"`
	RetryDelay     time.Duration `json:"retry_delay"`
	TableWaitDelay time.Duration `json:"table_wait_delay"`
	Environment    string        `json:"environment"`
	RequiredTables []string      `json:"required_tables"`
	LockFilePath   string        `json:"lock_file_path"`
	StatusFilePath string        `json:"status_file_path"`
}

// LockInfo represents the provisioning lock held by one process
type LockInfo struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Environment string    `json:"environment"`
}

// WorkerStatus represents the current state of table provisioning
type WorkerStatus string

const (
	StatusIdle           WorkerStatus = "idle"
	StatusRunning        WorkerStatus = "running"
	StatusCreatingTables WorkerStatus = "creating_tables"
	StatusCompleted      WorkerStatus = "completed"
	StatusFailed         WorkerStatus = "failed"
)

// ExecutionResult is the persisted outcome of a provisioning run
type ExecutionResult struct {
	Success       bool          `json:"success"`
	Status        WorkerStatus  `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	Duration      time.Duration `json:"duration"`
	TablesCreated []TableStatus `json:"tables_created"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	RetryCount    int           `json:"retry_count"`
	Environment   string        `json:"environment"`
}

// TableStatus records the state of one provisioned table
type TableStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"` // CREATING, ACTIVE, EXISTS, FAILED
	CreatedAt time.Time `json:"created_at"`
}
