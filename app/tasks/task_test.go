package tasks

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed)

	if task.Type != TaskTypeRefreshFeed {
		t.Errorf("Expected type '%s', got '%s'", TaskTypeRefreshFeed, task.Type)
	}
	if task.ID == "" {
		t.Error("Expected a non-empty task ID")
	}
	if task.RetryCount != 0 {
		t.Errorf("Expected retry count 0, got %d", task.RetryCount)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}
}

func TestTask_RetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed)

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected CanRetry true at retry count %d", task.RetryCount)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Expected CanRetry false at retry count %d", task.RetryCount)
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed)

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}

	task.Start()
	if task.GetDuration() < 0 {
		t.Error("Expected non-negative duration after Start")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		retryCount int
		expected   time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := retryDelay(tt.retryCount); got != tt.expected {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.retryCount, got, tt.expected)
		}
	}
}
