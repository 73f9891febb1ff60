package mq

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestBindings(t *testing.T) {
	bindings := Bindings()
	if len(bindings) != 3 {
		t.Fatalf("expected 3 bindings, got %d", len(bindings))
	}

	byQueue := make(map[Queue]Binding)
	for _, b := range bindings {
		byQueue[b.Queue] = b
	}

	pending, ok := byQueue[QueueGradesPending]
	if !ok {
		t.Fatal("grades.pending is not bound")
	}
	if pending.Exchange != ExchangeGrades || pending.RoutingKey != RoutingKeyPending {
		t.Errorf("unexpected binding for grades.pending: %+v", pending)
	}

	dlq, ok := byQueue[QueueDLQGrades]
	if !ok {
		t.Fatal("dlq.grades is not bound")
	}
	if dlq.Exchange != ExchangeDLQ {
		t.Errorf("dlq.grades should be bound to %s, got %s", ExchangeDLQ, dlq.Exchange)
	}
}

func TestParsePayload_GradePending(t *testing.T) {
	id := uuid.New()
	msg := NewMessage(MessageTypeGradePending, GradePendingPayload{GradeID: id})

	if msg.ID == "" {
		t.Error("message ID should be set")
	}
	if msg.Type != MessageTypeGradePending {
		t.Errorf("expected type %s, got %s", MessageTypeGradePending, msg.Type)
	}

	payload, err := ParsePayload[GradePendingPayload](msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.GradeID != id {
		t.Errorf("expected grade_id %s, got %s", id, payload.GradeID)
	}
}

func TestParsePayload_FromMap(t *testing.T) {
	// После json.Unmarshal конверта payload приходит как map
	msg := &Message{
		Type: MessageTypeGradeCompleted,
		Payload: map[string]any{
			"grade_id":     "6f1c2d3e-0000-4000-8000-000000000001",
			"level_id":     "addition",
			"status":       "PASSED",
			"passed_cases": float64(2),
			"total_cases":  float64(2),
		},
	}

	payload, err := ParsePayload[GradeCompletedPayload](msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.LevelID != "addition" || payload.Status != "PASSED" {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if payload.PassedCases != 2 || payload.TotalCases != 2 {
		t.Errorf("expected 2/2 cases, got %d/%d", payload.PassedCases, payload.TotalCases)
	}
}

func TestParsePayload_TypeMismatch(t *testing.T) {
	msg := &Message{Payload: map[string]any{"grade_id": 42}}

	if _, err := ParsePayload[GradePendingPayload](msg); err == nil {
		t.Error("expected error for numeric grade_id")
	}
}

func TestRequeue(t *testing.T) {
	transient := errors.New("db unavailable")

	tests := []struct {
		name        string
		err         error
		redelivered bool
		want        bool
	}{
		{"first failure", transient, false, true},
		{"second failure", transient, true, false},
		{"permanent", Permanent(transient), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Requeue(tt.err, tt.redelivered); got != tt.want {
				t.Errorf("Requeue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}

	cause := errors.New("level not found")
	err := Permanent(cause)
	if !errors.Is(err, ErrPermanent) {
		t.Error("expected ErrPermanent")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
}
