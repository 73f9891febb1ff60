package engine

import (
	"testing"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
)

// fakeIO — тестер-заглушка: очереди входов по каналам и запись выходов.
type fakeIO struct {
	inputs  map[int][]domain.Value
	outputs map[int][]domain.Value
}

func newFakeIO() *fakeIO {
	return &fakeIO{
		inputs:  make(map[int][]domain.Value),
		outputs: make(map[int][]domain.Value),
	}
}

func (f *fakeIO) Input(channel int) (domain.Value, bool) {
	queue := f.inputs[channel]
	if len(queue) == 0 {
		return domain.Value{}, false
	}
	f.inputs[channel] = queue[1:]
	return queue[0], true
}

func (f *fakeIO) CheckOutput(channel int, v domain.Value) error {
	f.outputs[channel] = append(f.outputs[channel], v)
	return nil
}

// ints возвращает числа канала; кортежи не ожидаются.
func (f *fakeIO) ints(channel int) []int64 {
	var out []int64
	for _, v := range f.outputs[channel] {
		n, _ := v.Int()
		out = append(out, n)
	}
	return out
}

func mustAdd(t *testing.T, g *Graph, kind domain.NodeKind, settings domain.NodeSettings) *Node {
	t.Helper()
	n, err := g.AddNode(kind, settings)
	if err != nil {
		t.Fatalf("AddNode(%s) failed: %v", kind, err)
	}
	return n
}

func mustConnect(t *testing.T, g *Graph, from, to domain.Terminal, cond Condition) *Connection {
	t.Helper()
	c, err := g.Connect(from, to, cond)
	if err != nil {
		t.Fatalf("Connect(%s, %s) failed: %v", from, to, err)
	}
	return c
}

func mustStride(t *testing.T, e *Evaluator, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := e.Stride(); err != nil {
			t.Fatalf("stride %d failed: %v", i, err)
		}
	}
}

// recorded подключает Recorder к новой шине.
func recorded() (*events.Bus, *events.Recorder) {
	bus := events.NewBus()
	rec := events.NewRecorder(0)
	bus.Subscribe(rec.Listener())
	return bus, rec
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
