package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/provider"
	"github.com/usercenter-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleAuthEmailBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task := asynq.NewTask(queue.TaskAuthEmail, []byte("not-json"))
	if err := consumer.handleAuthEmail(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleAuthEmailSkipsBlankFields(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	payload, err := json.Marshal(queue.AuthEmailPayload{
		Email:   "   ",
		Token:   "",
		Purpose: constants.TokenPurposeConfirm,
	})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}

	task := asynq.NewTask(queue.TaskAuthEmail, payload)
	if err := consumer.handleAuthEmail(context.Background(), task); err != nil {
		t.Fatalf("blank payload should be skipped without error, got %v", err)
	}
}

func TestHandleAuthEmailNilTask(t *testing.T) {
	consumer := NewConsumer(nil)
	if err := consumer.handleAuthEmail(context.Background(), nil); err != nil {
		t.Fatalf("nil task should be skipped without error, got %v", err)
	}
}
