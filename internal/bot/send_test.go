package bot

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSendWithTimeout_FastDelivery(t *testing.T) {
	if err := sendWithTimeout(func() error { return nil }, time.Second); err != nil {
		t.Errorf("Expected no error for a fast delivery, got: %v", err)
	}
}

func TestSendWithTimeout_PropagatesSendError(t *testing.T) {
	sendErr := errors.New("chat not found")

	err := sendWithTimeout(func() error { return sendErr }, time.Second)
	if !errors.Is(err, sendErr) {
		t.Errorf("Expected the delivery error, got: %v", err)
	}
}

func TestSendWithTimeout_SlowDeliveryTimesOut(t *testing.T) {
	err := sendWithTimeout(func() error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}, 10*time.Millisecond)

	if err == nil {
		t.Fatal("Expected an error when the deadline passes")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected a timeout error, got: %v", err)
	}
}
