package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"taskmanager/internal/models"
	"taskmanager/internal/monitoring"
	"taskmanager/internal/services"
)

const (
	tasksLimit    = 10
	weekLimit     = 15
	perGroupLimit = 5

	notLinkedText = "You need to connect your Telegram account with the Task Manager. " +
		"Please use the web interface to connect your account."
)

// Bot serves the Telegram command surface: task listings grouped by
// due date, status, priority and category. It also implements the
// dispatcher's Notifier so reminders go out through the same API
// client.
type Bot struct {
	api      *tgbotapi.BotAPI
	db       *gorm.DB
	telegram services.TelegramService
	metrics  monitoring.TaskMetrics

	pollTimeout int
	sendTimeout time.Duration
}

func New(token string, db *gorm.DB, telegram services.TelegramService, metrics monitoring.TaskMetrics, pollTimeout, sendTimeout time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	log.Printf("Bot authorized on account %s", api.Self.UserName)

	seconds := int(pollTimeout / time.Second)
	if seconds <= 0 {
		seconds = 60
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	return &Bot{
		api:         api,
		db:          db,
		telegram:    telegram,
		metrics:     metrics,
		pollTimeout: seconds,
		sendTimeout: sendTimeout,
	}, nil
}

// Send delivers an HTML-formatted message to a chat. It satisfies the
// dispatch.Notifier interface.
func (b *Bot) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return sendWithTimeout(func() error {
		_, err := b.api.Send(msg)
		return err
	}, b.sendTimeout)
}

// sendWithTimeout bounds a delivery because the API client has no per-call
// deadline. A late response after the deadline is discarded.
func sendWithTimeout(send func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- send()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("telegram send timed out after %s", timeout)
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("Bot started polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		if err := b.handleCommand(update.Message); err != nil {
			log.Printf("Failed to handle /%s: %v", update.Message.Command(), err)
		}
	}

	return nil
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.Send(msg.Chat.ID, "Welcome to the Task Manager Bot!\n\nUse /help to see available commands.")
	case "help":
		return b.Send(msg.Chat.ID,
			"Available commands:\n"+
				"/tasks - Show all your tasks\n"+
				"/today - Show tasks due today\n"+
				"/week - Show tasks due this week\n"+
				"/status - Show tasks by status\n"+
				"/priority - Show tasks by priority\n"+
				"/category - Show tasks by category\n")
	case "tasks":
		return b.withUser(msg, b.cmdTasks)
	case "today":
		return b.withUser(msg, b.cmdToday)
	case "week":
		return b.withUser(msg, b.cmdWeek)
	case "status":
		return b.withUser(msg, b.cmdStatus)
	case "priority":
		return b.withUser(msg, b.cmdPriority)
	case "category":
		return b.withUser(msg, b.cmdCategory)
	default:
		return b.Send(msg.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

// withUser resolves the Telegram sender to an application user and runs
// the command body with it, recording a notification metric either way.
func (b *Bot) withUser(msg *tgbotapi.Message, fn func(chatID int64, user models.User) error) error {
	if msg.From == nil {
		return nil
	}

	user, err := b.telegram.UserByTelegramID(b.db, msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.Send(msg.Chat.ID, notLinkedText)
		}
		if b.metrics != nil {
			b.metrics.NotificationSent("error")
		}
		_ = b.Send(msg.Chat.ID, "An error occurred while fetching your tasks.")
		return err
	}

	if err := fn(msg.Chat.ID, user); err != nil {
		if b.metrics != nil {
			b.metrics.NotificationSent("error")
		}
		_ = b.Send(msg.Chat.ID, "An error occurred while fetching your tasks.")
		return err
	}

	if b.metrics != nil {
		b.metrics.NotificationSent("success")
	}
	return nil
}

func (b *Bot) cmdTasks(chatID int64, user models.User) error {
	var tasks []models.Task
	if err := b.db.Where("user_id = ?", user.ID).Order("created_at").Find(&tasks).Error; err != nil {
		return err
	}

	if len(tasks) == 0 {
		return b.Send(chatID, "You don't have any tasks.")
	}

	var sb strings.Builder
	sb.WriteString("Your tasks:\n\n")
	shown := tasks
	if len(shown) > tasksLimit {
		shown = shown[:tasksLimit]
	}
	for _, task := range shown {
		sb.WriteString(FormatTaskMessage(task))
		sb.WriteString("\n")
	}
	if len(tasks) > tasksLimit {
		fmt.Fprintf(&sb, "\nShowing %d of %d tasks. Use web interface to see all tasks.", tasksLimit, len(tasks))
	}

	return b.Send(chatID, sb.String())
}

func (b *Bot) cmdToday(chatID int64, user models.User) error {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var tasks []models.Task
	err := b.db.Where("user_id = ? AND due_date >= ? AND due_date < ?", user.ID, start, end).
		Order("due_date").Find(&tasks).Error
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		return b.Send(chatID, "You don't have any tasks due today.")
	}

	var sb strings.Builder
	sb.WriteString("Tasks due today:\n\n")
	for _, task := range tasks {
		sb.WriteString(FormatTaskMessage(task))
		sb.WriteString("\n")
	}

	return b.Send(chatID, sb.String())
}

func (b *Bot) cmdWeek(chatID int64, user models.User) error {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	var tasks []models.Task
	err := b.db.Where("user_id = ? AND due_date >= ? AND due_date < ?", user.ID, start, end).
		Order("due_date").Find(&tasks).Error
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		return b.Send(chatID, "You don't have any tasks due this week.")
	}

	var sb strings.Builder
	sb.WriteString("Tasks due this week:\n\n")
	shown := tasks
	if len(shown) > weekLimit {
		shown = shown[:weekLimit]
	}
	for _, task := range shown {
		sb.WriteString(FormatTaskMessage(task))
		sb.WriteString("\n")
	}
	if len(tasks) > weekLimit {
		fmt.Fprintf(&sb, "\nShowing %d of %d tasks. Use web interface to see all tasks.", weekLimit, len(tasks))
	}

	return b.Send(chatID, sb.String())
}

func (b *Bot) cmdStatus(chatID int64, user models.User) error {
	statuses := []models.TaskStatus{
		models.StatusTodo, models.StatusInProgress, models.StatusDone, models.StatusCanceled,
	}

	var sb strings.Builder
	sb.WriteString("Tasks by status:\n\n")
	empty := true
	for _, status := range statuses {
		var tasks []models.Task
		if err := b.db.Where("user_id = ? AND status = ?", user.ID, status).Find(&tasks).Error; err != nil {
			return err
		}
		section := formatGroupSection(emojiFor(statusEmoji, status, ""), string(status), tasks, perGroupLimit)
		if section != "" {
			empty = false
			sb.WriteString(section)
		}
	}

	if empty {
		return b.Send(chatID, "You don't have any tasks.")
	}
	return b.Send(chatID, sb.String())
}

func (b *Bot) cmdPriority(chatID int64, user models.User) error {
	priorities := []models.TaskPriority{
		models.PriorityUrgent, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
	}

	var sb strings.Builder
	sb.WriteString("Tasks by priority:\n\n")
	empty := true
	for _, priority := range priorities {
		var tasks []models.Task
		if err := b.db.Where("user_id = ? AND priority = ?", user.ID, priority).Find(&tasks).Error; err != nil {
			return err
		}
		section := formatGroupSection(emojiFor(priorityEmoji, priority, ""), string(priority), tasks, perGroupLimit)
		if section != "" {
			empty = false
			sb.WriteString(section)
		}
	}

	if empty {
		return b.Send(chatID, "You don't have any tasks.")
	}
	return b.Send(chatID, sb.String())
}

func (b *Bot) cmdCategory(chatID int64, user models.User) error {
	categories := []models.TaskCategory{
		models.CategoryWork, models.CategoryPersonal, models.CategoryHealth,
		models.CategoryEducation, models.CategoryOther,
	}

	var sb strings.Builder
	sb.WriteString("Tasks by category:\n\n")
	empty := true
	for _, category := range categories {
		var tasks []models.Task
		if err := b.db.Where("user_id = ? AND category = ?", user.ID, category).Find(&tasks).Error; err != nil {
			return err
		}
		section := formatGroupSection(emojiFor(categoryEmoji, category, ""), string(category), tasks, perGroupLimit)
		if section != "" {
			empty = false
			sb.WriteString(section)
		}
	}

	if empty {
		return b.Send(chatID, "You don't have any tasks.")
	}
	return b.Send(chatID, sb.String())
}
