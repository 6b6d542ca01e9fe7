package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// TaskMetrics is the sink for domain events. Recording is fire-and-forget:
// implementations must never fail or block the operation that emits them.
type TaskMetrics interface {
	TaskCreated(category, priority string)
	TaskCompleted(category, priority string, duration time.Duration)
	NotificationSent(status string)
}

// TaskStats holds counters keyed by "category:priority" plus notification
// outcomes keyed by status ("success" / "error").
type TaskStats struct {
	mu                  sync.RWMutex
	Created             map[string]int64 `json:"created"`
	Completed           map[string]int64 `json:"completed"`
	CompletionSeconds   map[string]float64 `json:"completion_seconds_total"`
	Notifications       map[string]int64 `json:"notifications"`
}

var globalTaskStats = &TaskStats{
	Created:           make(map[string]int64),
	Completed:         make(map[string]int64),
	CompletionSeconds: make(map[string]float64),
	Notifications:     make(map[string]int64),
}

// TaskRecorder is the default TaskMetrics backed by the process-wide counters
// that MetricsHandler exposes.
type TaskRecorder struct {
	stats *TaskStats
}

func NewTaskRecorder() *TaskRecorder {
	return &TaskRecorder{stats: globalTaskStats}
}

func (r *TaskRecorder) TaskCreated(category, priority string) {
	key := statKey(category, priority)
	r.stats.mu.Lock()
	r.stats.Created[key]++
	r.stats.mu.Unlock()
}

func (r *TaskRecorder) TaskCompleted(category, priority string, duration time.Duration) {
	key := statKey(category, priority)
	r.stats.mu.Lock()
	r.stats.Completed[key]++
	r.stats.CompletionSeconds[key] += duration.Seconds()
	r.stats.mu.Unlock()
}

func (r *TaskRecorder) NotificationSent(status string) {
	r.stats.mu.Lock()
	r.stats.Notifications[status]++
	r.stats.mu.Unlock()
}

func GetTaskStats() *TaskStats {
	globalTaskStats.mu.RLock()
	defer globalTaskStats.mu.RUnlock()

	stats := &TaskStats{
		Created:           make(map[string]int64),
		Completed:         make(map[string]int64),
		CompletionSeconds: make(map[string]float64),
		Notifications:     make(map[string]int64),
	}
	for k, v := range globalTaskStats.Created {
		stats.Created[k] = v
	}
	for k, v := range globalTaskStats.Completed {
		stats.Completed[k] = v
	}
	for k, v := range globalTaskStats.CompletionSeconds {
		stats.CompletionSeconds[k] = v
	}
	for k, v := range globalTaskStats.Notifications {
		stats.Notifications[k] = v
	}
	return stats
}

func statKey(category, priority string) string {
	return fmt.Sprintf("%s:%s", category, priority)
}
