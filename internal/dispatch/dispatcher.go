package dispatch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/monitoring"
	"taskmanager/internal/services"

	"gorm.io/gorm"
)

// Notifier delivers a rendered reminder message to a Telegram chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// RenderFunc turns a task into the message body pushed to the user.
type RenderFunc func(task models.Task) string

// Dispatcher periodically scans for due reminders and pushes each one
// to its owner's linked Telegram chat. A reminder is marked sent only
// after a successful delivery, so failed sends are retried on the next
// tick as long as the reminder is still inside the lookback window.
type Dispatcher struct {
	db        *gorm.DB
	reminders services.ReminderService
	telegram  services.TelegramService
	notifier  Notifier
	metrics   monitoring.TaskMetrics
	render    RenderFunc

	interval time.Duration
	window   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, reminders services.ReminderService, telegram services.TelegramService,
	notifier Notifier, metrics monitoring.TaskMetrics, render RenderFunc,
	interval, window time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &Dispatcher{
		db:        db,
		reminders: reminders,
		telegram:  telegram,
		notifier:  notifier,
		metrics:   metrics,
		render:    render,
		interval:  interval,
		window:    window,
	}
}

// Start launches the background scan loop. It returns immediately.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		log.Printf("Reminder dispatcher started (interval=%s window=%s)", d.interval, d.window)

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Reminder dispatcher stopping")
				return
			case <-ticker.C:
				if sent, err := d.RunScan(time.Now().UTC()); err != nil {
					log.Printf("Reminder scan failed: %v", err)
				} else if sent > 0 {
					log.Printf("Reminder scan dispatched %d notification(s)", sent)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight scan to finish.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

// RunScan performs one pass over the due reminders and returns how many
// notifications were delivered. A failure on one reminder never blocks
// the rest of the batch.
func (d *Dispatcher) RunScan(now time.Time) (int, error) {
	due, err := d.reminders.DueReminders(d.db, now, d.window)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reminder := range due {
		delivered, err := d.dispatchOne(reminder)
		if err != nil {
			log.Printf("Reminder %s not dispatched: %v", reminder.ID, err)
			if d.metrics != nil {
				d.metrics.NotificationSent("error")
			}
			continue
		}
		if delivered {
			sent++
			if d.metrics != nil {
				d.metrics.NotificationSent("success")
			}
		}
	}
	return sent, nil
}

func (d *Dispatcher) dispatchOne(reminder models.Reminder) (bool, error) {
	var task models.Task
	if err := d.db.First(&task, "id = ?", reminder.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned reminder, nothing to notify about.
			log.Printf("Reminder %s references missing task %s, skipping", reminder.ID, reminder.TaskID)
			return false, nil
		}
		return false, err
	}

	binding, err := d.telegram.BindingForUser(d.db, task.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Owner never linked Telegram; leave the reminder unsent.
			return false, nil
		}
		return false, err
	}
	if !binding.IsActive {
		return false, nil
	}

	if err := d.notifier.Send(binding.ChatID, d.render(task)); err != nil {
		return false, err
	}

	updated, err := d.reminders.MarkSent(d.db, reminder.ID)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Printf("Reminder %s already marked sent by a concurrent scan", reminder.ID)
		return false, nil
	}
	return true, nil
}
