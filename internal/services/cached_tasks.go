package services

import (
	"fmt"
	"log"
	"time"

	"taskmanager/internal/cache"
	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const taskCacheTTL = 30 * time.Minute

// CachedTaskService is a cache-aside wrapper around TaskService. Single-task
// reads are served from redis when possible; every write invalidates the
// affected keys. Cache failures degrade to the underlying service.
type CachedTaskService struct {
	tasks TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(tasks TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{tasks: tasks, cache: cacheInstance}
}

func taskKey(taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s", taskID.String())
}

func userTasksPattern(userID uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s:*", userID.String())
}

func (s *CachedTaskService) invalidate(userID, taskID uuid.UUID) {
	if err := s.cache.Delete(taskKey(taskID)); err != nil {
		log.Printf("cache invalidation failed for task %s: %v", taskID, err)
	}
	if err := s.cache.DeletePattern(userTasksPattern(userID)); err != nil {
		log.Printf("cache invalidation failed for user %s lists: %v", userID, err)
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.tasks.CreateTask(db, userID, input)
	if err != nil {
		return task, err
	}

	if err := s.cache.Set(taskKey(task.ID), task, taskCacheTTL); err != nil {
		log.Printf("cache set failed for task %s: %v", task.ID, err)
	}
	if err := s.cache.DeletePattern(userTasksPattern(userID)); err != nil {
		log.Printf("cache invalidation failed for user %s lists: %v", userID, err)
	}
	return task, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(taskID), &cached); err == nil {
		// Ownership still has to hold for the caller, cached or not.
		if cached.UserID == userID {
			return cached, nil
		}
		return models.Task{}, gorm.ErrRecordNotFound
	}

	task, err := s.tasks.GetTaskByID(db, userID, taskID)
	if err != nil {
		return task, err
	}

	if err := s.cache.Set(taskKey(task.ID), task, taskCacheTTL); err != nil {
		log.Printf("cache set failed for task %s: %v", task.ID, err)
	}
	return task, nil
}

func (s *CachedTaskService) GetTasksPaginated(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	type cachedPage struct {
		Tasks []models.Task `json:"tasks"`
		Total int64         `json:"total"`
	}

	key := fmt.Sprintf("user_tasks:%s:%s:%s:%s:%s:%s:%s:%s",
		userID.String(),
		filter.Status, filter.Priority, filter.Category,
		filter.SortBy, filter.Order, filter.Page, filter.PageSize)

	var page cachedPage
	if err := s.cache.Get(key, &page); err == nil {
		return page.Tasks, page.Total, nil
	}

	tasks, total, err := s.tasks.GetTasksPaginated(db, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.Set(key, cachedPage{Tasks: tasks, Total: total}, 5*time.Minute); err != nil {
		log.Printf("cache set failed for user %s list: %v", userID, err)
	}
	return tasks, total, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, changes TaskUpdate) (models.Task, error) {
	task, err := s.tasks.UpdateTask(db, userID, taskID, changes)
	if err != nil {
		return task, err
	}
	s.invalidate(userID, taskID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	if err := s.tasks.DeleteTask(db, userID, taskID); err != nil {
		return err
	}
	s.invalidate(userID, taskID)
	return nil
}

func (s *CachedTaskService) CreateRecurring(db *gorm.DB, userID, taskID uuid.UUID, input RecurringInput) (models.RecurringTask, error) {
	return s.tasks.CreateRecurring(db, userID, taskID, input)
}

func (s *CachedTaskService) GetRecurring(db *gorm.DB, userID, taskID uuid.UUID) (models.RecurringTask, error) {
	return s.tasks.GetRecurring(db, userID, taskID)
}

func (s *CachedTaskService) UpdateRecurring(db *gorm.DB, userID, taskID uuid.UUID, changes RecurringUpdate) (models.RecurringTask, error) {
	return s.tasks.UpdateRecurring(db, userID, taskID, changes)
}

func (s *CachedTaskService) DeleteRecurring(db *gorm.DB, userID, taskID uuid.UUID) error {
	return s.tasks.DeleteRecurring(db, userID, taskID)
}
