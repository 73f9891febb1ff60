package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pulse/internal/domain"
)

type fakeGrades struct {
	stale     []domain.Grade
	updated   []domain.Grade
	calls     int
	listErr   error
	updateErr error
}

func (f *fakeGrades) ListStale(_ context.Context, _ time.Duration, limit int) ([]domain.Grade, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.stale) > limit {
		return f.stale[:limit], nil
	}
	return f.stale, nil
}

func (f *fakeGrades) Update(_ context.Context, g *domain.Grade) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, *g)
	return nil
}

type fakePublisher struct {
	published []uuid.UUID
	err       error
}

func (f *fakePublisher) PublishGradePending(_ context.Context, id uuid.UUID) error {
	f.published = append(f.published, id)
	return f.err
}

func staleGrade(status domain.GradeStatus) domain.Grade {
	started := time.Now().Add(-time.Hour)
	g := domain.Grade{
		ID:        uuid.New(),
		LevelID:   "addition",
		Status:    status,
		CreatedAt: started,
	}
	if status == domain.GradeStatusRunning {
		g.StartedAt = &started
	}
	return g
}

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"*/5 * * * *", false},
		{"0 3 * * 1", false},
		{"@every 30s", false},
		{"@hourly", false},
		{"* * *", true},
		{"not a cron", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseCron(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestNextDue(t *testing.T) {
	schedule, err := ParseCron("*/5 * * * *")
	if err != nil {
		t.Fatal(err)
	}

	from := time.Date(2026, 3, 1, 10, 2, 30, 0, time.UTC)
	want := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

	if got := NextDue(schedule, from); !got.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", got, want)
	}
}

func TestNew_InvalidCron(t *testing.T) {
	if _, err := New(Config{Cron: "every day"}); err == nil {
		t.Error("expected error for invalid cron")
	}
}

func TestSweep(t *testing.T) {
	pending := staleGrade(domain.GradeStatusPending)
	running := staleGrade(domain.GradeStatusRunning)

	grades := &fakeGrades{stale: []domain.Grade{pending, running}}
	pub := &fakePublisher{}

	s, err := New(Config{Grades: grades, Publisher: pub})
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 regraded, got %d", n)
	}

	// Обновляется только RUNNING
	if len(grades.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(grades.updated))
	}
	reset := grades.updated[0]
	if reset.ID != running.ID || reset.Status != domain.GradeStatusPending || reset.StartedAt != nil {
		t.Errorf("running grade should be reset to pending, got %+v", reset)
	}

	if len(pub.published) != 2 || pub.published[0] != pending.ID || pub.published[1] != running.ID {
		t.Errorf("unexpected published ids: %v", pub.published)
	}
}

func TestSweep_PublishFailureIsNotFatal(t *testing.T) {
	grades := &fakeGrades{stale: []domain.Grade{staleGrade(domain.GradeStatusPending)}}
	pub := &fakePublisher{err: errors.New("channel closed")}

	s, _ := New(Config{Grades: grades, Publisher: pub})

	n, err := s.Sweep(context.Background())
	if err != nil || n != 1 {
		t.Errorf("expected 1 regraded without error, got %d, %v", n, err)
	}
}

func TestSweep_UpdateFailureSkipsGrade(t *testing.T) {
	grades := &fakeGrades{
		stale:     []domain.Grade{staleGrade(domain.GradeStatusRunning)},
		updateErr: errors.New("deadlock detected"),
	}
	pub := &fakePublisher{}

	s, _ := New(Config{Grades: grades, Publisher: pub})

	n, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || len(pub.published) != 0 {
		t.Errorf("grade should not be published after failed reset, got n=%d published=%v", n, pub.published)
	}
}

func TestSweep_ListError(t *testing.T) {
	grades := &fakeGrades{listErr: errors.New("connection refused")}
	s, _ := New(Config{Grades: grades})

	if _, err := s.Sweep(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestTick_FollowsSchedule(t *testing.T) {
	grades := &fakeGrades{}
	s, err := New(Config{Grades: grades, Cron: "*/5 * * * *"})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 3, 1, 10, 2, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// Первый тик — сразу проход
	if err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if grades.calls != 1 {
		t.Fatalf("expected first sweep, got %d calls", grades.calls)
	}
	if want := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC); !s.NextDue().Equal(want) {
		t.Errorf("next due = %v, want %v", s.NextDue(), want)
	}

	// До следующего срока — ничего
	now = now.Add(2 * time.Minute)
	if err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if grades.calls != 1 {
		t.Errorf("sweep should wait for next due, got %d calls", grades.calls)
	}

	// Срок наступил
	now = time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	if err := s.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if grades.calls != 2 {
		t.Errorf("expected second sweep, got %d calls", grades.calls)
	}
}
