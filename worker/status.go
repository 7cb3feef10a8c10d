package worker

import (
	"encoding/json"
	"fmt"
	"kodikas-backend/models"
	"os"
	"path/filepath"
	"time"
)

// StatusManager persists the outcome of provisioning runs as JSON
type StatusManager struct {
	statusFilePath string
	now            func() time.Time
}

// NewStatusManager creates a new status manager
func NewStatusManager(statusPath string) *StatusManager {
	return &StatusManager{
		statusFilePath: statusPath,
		now:            time.Now,
	}
}

// Begin starts a fresh running result for env and saves it
func (sm *StatusManager) Begin(env string) (*models.ExecutionResult, error) {
	result := &models.ExecutionResult{
		Status:        models.StatusRunning,
		StartTime:     sm.now(),
		TablesCreated: make([]models.TableStatus, 0),
		Environment:   env,
	}
	return result, sm.SaveStatus(result)
}

func (sm *StatusManager) SaveStatus(result *models.ExecutionResult) error {
	if err := os.MkdirAll(filepath.Dir(sm.statusFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	tempFile := sm.statusFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := os.Rename(tempFile, sm.statusFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename status file: %w", err)
	}
	return nil
}

func (sm *StatusManager) LoadStatus() (*models.ExecutionResult, error) {
	data, err := os.ReadFile(sm.statusFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &result, nil
}

// IsSetupCompleted reports whether the last run finished successfully
func (sm *StatusManager) IsSetupCompleted() (bool, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return false, err
	}
	return status.Status == models.StatusCompleted && status.Success, nil
}

// RecordTable adds or replaces the entry for one table
func (sm *StatusManager) RecordTable(result *models.ExecutionResult, table models.TableStatus) error {
	for i := range result.TablesCreated {
		if result.TablesCreated[i].Name == table.Name {
			result.TablesCreated[i] = table
			return sm.SaveStatus(result)
		}
	}
	result.TablesCreated = append(result.TablesCreated, table)
	return sm.SaveStatus(result)
}

// SetStatus moves the run to status and saves it
func (sm *StatusManager) SetStatus(result *models.ExecutionResult, status models.WorkerStatus) error {
	result.Status = status
	return sm.SaveStatus(result)
}

// IncrementRetryCount records another failed attempt
func (sm *StatusManager) IncrementRetryCount(result *models.ExecutionResult) error {
	result.RetryCount++
	return sm.SaveStatus(result)
}

// MarkCompleted marks the run as completed
func (sm *StatusManager) MarkCompleted(result *models.ExecutionResult) error {
	sm.finish(result, models.StatusCompleted, "")
	return sm.SaveStatus(result)
}

// MarkFailed marks the run as failed
func (sm *StatusManager) MarkFailed(result *models.ExecutionResult, errorMsg string) error {
	sm.finish(result, models.StatusFailed, errorMsg)
	return sm.SaveStatus(result)
}

func (sm *StatusManager) finish(result *models.ExecutionResult, status models.WorkerStatus, errorMsg string) {
	now := sm.now()
	result.Success = status == models.StatusCompleted
	result.Status = status
	result.ErrorMessage = errorMsg
	result.EndTime = &now
	result.Duration = now.Sub(result.StartTime)
}
