package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/monitoring"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    models.TaskPriority  `json:"priority"`
	Category    models.TaskCategory  `json:"category"`
	DueDate     *time.Time           `json:"due_date"`
}

// TaskUpdate is a sparse change set: nil fields are left untouched.
type TaskUpdate struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Status      *models.TaskStatus    `json:"status"`
	Priority    *models.TaskPriority  `json:"priority"`
	Category    *models.TaskCategory  `json:"category"`
	DueDate     *time.Time            `json:"due_date"`
}

type TaskFilter struct {
	Status   string
	Priority string
	Category string
	SortBy   string
	Order    string
	Page     string
	PageSize string
}

type RecurringInput struct {
	Frequency string     `json:"frequency" binding:"required"`
	Interval  int        `json:"interval"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type RecurringUpdate struct {
	Frequency *string    `json:"frequency"`
	Interval  *int       `json:"interval"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error)
	GetTasksPaginated(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error)
	UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, changes TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error

	CreateRecurring(db *gorm.DB, userID, taskID uuid.UUID, input RecurringInput) (models.RecurringTask, error)
	GetRecurring(db *gorm.DB, userID, taskID uuid.UUID) (models.RecurringTask, error)
	UpdateRecurring(db *gorm.DB, userID, taskID uuid.UUID, changes RecurringUpdate) (models.RecurringTask, error)
	DeleteRecurring(db *gorm.DB, userID, taskID uuid.UUID) error
}

type TaskServiceImpl struct {
	metrics monitoring.TaskMetrics
}

func NewTaskService(metrics monitoring.TaskMetrics) *TaskServiceImpl {
	return &TaskServiceImpl{metrics: metrics}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error) {
	taskID, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to generate task ID: %w", err)
	}

	task := models.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     input.DueDate,
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.CategoryOther
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	if s.metrics != nil {
		s.metrics.TaskCreated(string(task.Category), string(task.Priority))
	}

	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	return task, err
}

func (s *TaskServiceImpl) GetTasksPaginated(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	query := db.Model(&models.Task{}).Where("user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "created_at", "updated_at", "due_date", "priority", "status", "title":
	default:
		sortBy = "created_at"
	}
	order := filter.Order
	if order != "asc" {
		order = "desc"
	}

	page, err := strconv.Atoi(filter.Page)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(filter.PageSize)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var tasks []models.Task
	err = query.
		Order(sortBy + " " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateTask applies a sparse change set. The first transition into done stamps
// CompletedAt and emits the completion metric; CompletedAt is written once and
// never touched again on later status churn, which also keeps the metric from
// double counting a task that was completed, reopened, and completed again.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, changes TaskUpdate) (models.Task, error) {
	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return models.Task{}, err
	}

	completing := changes.Status != nil &&
		*changes.Status == models.StatusDone &&
		task.Status != models.StatusDone &&
		task.CompletedAt == nil

	if changes.Title != nil {
		task.Title = *changes.Title
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.Status != nil {
		task.Status = *changes.Status
	}
	if changes.Priority != nil {
		task.Priority = *changes.Priority
	}
	if changes.Category != nil {
		task.Category = *changes.Category
	}
	if changes.DueDate != nil {
		task.DueDate = changes.DueDate
	}

	if completing {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}

	if completing && s.metrics != nil {
		s.metrics.TaskCompleted(string(task.Category), string(task.Priority),
			task.CompletedAt.Sub(task.CreatedAt))
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TimeTrack{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.RecurringTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
}

func (s *TaskServiceImpl) CreateRecurring(db *gorm.DB, userID, taskID uuid.UUID, input RecurringInput) (models.RecurringTask, error) {
	if _, err := s.GetTaskByID(db, userID, taskID); err != nil {
		return models.RecurringTask{}, err
	}

	var existing models.RecurringTask
	err := db.Where("task_id = ?", taskID).First(&existing).Error
	if err == nil {
		return models.RecurringTask{}, ErrRecurringExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RecurringTask{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.RecurringTask{}, fmt.Errorf("failed to generate rule ID: %w", err)
	}

	rule := models.RecurringTask{
		ID:        id,
		TaskID:    taskID,
		Frequency: input.Frequency,
		Interval:  input.Interval,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	if rule.StartDate.IsZero() {
		rule.StartDate = time.Now().UTC()
	}

	if err := db.Create(&rule).Error; err != nil {
		return models.RecurringTask{}, err
	}
	return rule, nil
}

func (s *TaskServiceImpl) GetRecurring(db *gorm.DB, userID, taskID uuid.UUID) (models.RecurringTask, error) {
	if _, err := s.GetTaskByID(db, userID, taskID); err != nil {
		return models.RecurringTask{}, err
	}

	var rule models.RecurringTask
	err := db.Where("task_id = ?", taskID).First(&rule).Error
	return rule, err
}

func (s *TaskServiceImpl) UpdateRecurring(db *gorm.DB, userID, taskID uuid.UUID, changes RecurringUpdate) (models.RecurringTask, error) {
	rule, err := s.GetRecurring(db, userID, taskID)
	if err != nil {
		return models.RecurringTask{}, err
	}

	if changes.Frequency != nil {
		rule.Frequency = *changes.Frequency
	}
	if changes.Interval != nil && *changes.Interval >= 1 {
		rule.Interval = *changes.Interval
	}
	if changes.StartDate != nil {
		rule.StartDate = *changes.StartDate
	}
	if changes.EndDate != nil {
		rule.EndDate = changes.EndDate
	}

	if err := db.Save(&rule).Error; err != nil {
		return models.RecurringTask{}, err
	}
	return rule, nil
}

func (s *TaskServiceImpl) DeleteRecurring(db *gorm.DB, userID, taskID uuid.UUID) error {
	rule, err := s.GetRecurring(db, userID, taskID)
	if err != nil {
		return err
	}
	return db.Delete(&rule).Error
}
