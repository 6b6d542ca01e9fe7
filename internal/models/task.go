package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusCanceled   TaskStatus = "canceled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type TaskCategory string

const (
	CategoryPersonal  TaskCategory = "personal"
	CategoryWork      TaskCategory = "work"
	CategoryHealth    TaskCategory = "health"
	CategoryEducation TaskCategory = "education"
	CategoryOther     TaskCategory = "other"
)

type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'todo'"`
	Priority    TaskPriority `json:"priority" gorm:"not null;default:'medium'"`
	Category    TaskCategory `json:"category" gorm:"not null;default:'other'"`

	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Recurring  *RecurringTask `json:"recurring,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	TimeTracks []TimeTrack    `json:"time_tracks,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Reminders  []Reminder     `json:"reminders,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// RecurringTask is inert recurrence metadata: no task instances are spawned
// from it, at most one rule exists per task.
type RecurringTask struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;uniqueIndex"`
	Frequency string     `json:"frequency" gorm:"not null"`
	Interval  int        `json:"interval" gorm:"not null;default:1"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TimeTrack records one tracking session. An entry with EndTime == nil is the
// task's active session; the schema allows at most one per task.
type TimeTrack struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	StartTime time.Time  `json:"start_time" gorm:"not null"`
	EndTime   *time.Time `json:"end_time"`
	Duration  *int       `json:"duration"` // whole seconds
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t *TimeTrack) Active() bool {
	return t.EndTime == nil
}

type Reminder struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID       uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	ReminderTime time.Time `json:"reminder_time" gorm:"not null;index"`
	IsSent       bool      `json:"is_sent" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TelegramUser binds an account to a Telegram chat. One binding per user, and
// the Telegram identifiers are unique across all users.
type TelegramUser struct {
	ID         uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	TelegramID int64     `json:"telegram_id" gorm:"not null;uniqueIndex"`
	ChatID     int64     `json:"chat_id" gorm:"not null;uniqueIndex"`
	// No column default: gorm skips zero values for defaulted fields on
	// create, which would store a false flag as active.
	IsActive   bool      `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
