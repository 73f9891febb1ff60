package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/events"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FiringPolicy
		wantErr bool
	}{
		{"", PolicySingle, false},
		{"single", PolicySingle, false},
		{"cartesian", PolicyCartesian, false},
		{"overclocked", PolicyCartesian, false},
		{"batch", PolicySingle, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEvaluator_EmptyGraph(t *testing.T) {
	e := NewEvaluator(NewGraph(), nil, Config{})

	if e.Stage() != StageEvaluate {
		t.Fatalf("expected evaluate stage, got %s", e.Stage())
	}

	mustStride(t, e, 1)
	if e.Stage() != StageAdvance {
		t.Errorf("expected advance stage, got %s", e.Stage())
	}

	mustStride(t, e, 1)
	if e.Stage() != StageEvaluate {
		t.Errorf("expected evaluate stage, got %s", e.Stage())
	}
	if e.Steps() != 2 || e.Strides() != 2 {
		t.Errorf("expected 2 steps and 2 strides, got %d and %d", e.Steps(), e.Strides())
	}
}

func TestEvaluator_StepGranularity(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	mustAdd(t, g, domain.KindNop, domain.NodeSettings{})

	e := NewEvaluator(g, nil, Config{})

	// Два узла + переход
	for i := 0; i < 2; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if e.Stage() != StageEvaluate {
			t.Fatalf("step %d: stage changed too early", i)
		}
	}
	if err := e.Step(); err != nil {
		t.Fatal(err)
	}
	if e.Stage() != StageAdvance {
		t.Errorf("expected advance after visiting all nodes, got %s", e.Stage())
	}
}

func TestEvaluator_ConstantToOutput(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 5})
	o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})
	mustConnect(t, g, c.Output(0), o.Input(0), nil)

	io := newFakeIO()
	bus, rec := recorded()
	e := NewEvaluator(g, io, Config{Bus: bus})

	// Evaluate: constant срабатывает, токен на его выходе
	mustStride(t, e, 1)
	if e.Tokens().Len() != 1 || !e.Tokens().Occupied(c.Output(0)) {
		t.Fatalf("expected one token on constant output")
	}

	// Advance: токен на входе output
	mustStride(t, e, 1)
	if !e.Tokens().Occupied(o.Input(0)) {
		t.Fatal("expected token on output input")
	}

	// Evaluate: output потребляет токен
	mustStride(t, e, 1)
	if e.Tokens().Len() != 0 {
		t.Errorf("expected no tokens, got %d", e.Tokens().Len())
	}
	if got := io.ints(0); !equalInts(got, []int64{5}) {
		t.Errorf("expected [5], got %v", got)
	}

	// Дальше ничего не происходит
	mustStride(t, e, 4)
	if got := io.ints(0); !equalInts(got, []int64{5}) {
		t.Errorf("constant must fire once, got %v", got)
	}

	if rec.Count(events.KindNodeFired) != 2 {
		t.Errorf("expected 2 NodeFired events, got %d", rec.Count(events.KindNodeFired))
	}
	if rec.Count(events.KindTokenAdvanced) != 1 {
		t.Errorf("expected 1 TokenAdvanced event, got %d", rec.Count(events.KindTokenAdvanced))
	}
}

func TestEvaluator_NodeFiredEvent(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 3})
	a := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	b := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	mustConnect(t, g, c.Output(0), a.Input(0), nil)
	mustConnect(t, g, c.Output(0), b.Input(0), nil)

	bus, rec := recorded()
	e := NewEvaluator(g, nil, Config{Bus: bus})
	mustStride(t, e, 1)

	evs := rec.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	fired, ok := evs[0].(events.NodeFired)
	if !ok {
		t.Fatalf("expected NodeFired, got %T", evs[0])
	}
	if fired.Node != c.ID || len(fired.Consumed) != 0 {
		t.Errorf("unexpected event: %+v", fired)
	}
	// Fan-out: по токену на каждое соединение
	if len(fired.Produced) != 2 {
		t.Fatalf("expected 2 produced tokens, got %d", len(fired.Produced))
	}
	for _, ref := range fired.Produced {
		if ref.At != c.Output(0) {
			t.Errorf("token must be created at source terminal, got %s", ref.At)
		}
		if n, _ := ref.Value.Int(); n != 3 {
			t.Errorf("expected value 3, got %s", ref.Value)
		}
	}
}

func TestEvaluator_BackPressure(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1, Repeat: true})
	n := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	conn := mustConnect(t, g, c.Output(0), n.Input(0), nil)

	bus, rec := recorded()
	e := NewEvaluator(g, nil, Config{Bus: bus})

	// Токен, который ещё не ушёл с выхода constant
	stuck := e.Tokens().NewToken(c.Output(0), conn, domain.Int(9))
	e.Tokens().Add(stuck)

	mustStride(t, e, 1)
	if e.NodeState(c.ID).Fired {
		t.Fatal("node with occupied output must not fire")
	}
	if rec.Count(events.KindNodeFired) != 0 {
		t.Fatalf("expected no firings, got %d", rec.Count(events.KindNodeFired))
	}

	// Advance освобождает выход
	mustStride(t, e, 1)
	mustStride(t, e, 1)
	if !e.NodeState(c.ID).Fired {
		t.Error("constant must fire once its output is drained")
	}
	// nop тоже сработал на перемещённом токене
	if rec.Count(events.KindNodeFired) != 2 {
		t.Errorf("expected 2 firings, got %d", rec.Count(events.KindNodeFired))
	}
}

// plusWithInputs строит plus → output и кладёт токены на входы plus.
func plusWithInputs(t *testing.T, policy FiringPolicy, left, right []int64) (*Evaluator, *fakeIO, *events.Recorder, *Node) {
	t.Helper()

	g := NewGraph()
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})
	o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})
	mustConnect(t, g, p.Output(0), o.Input(0), nil)

	io := newFakeIO()
	bus, rec := recorded()
	e := NewEvaluator(g, io, Config{Policy: policy, Bus: bus})

	for _, v := range left {
		e.Tokens().Add(e.Tokens().NewToken(p.Input(0), nil, domain.Int(v)))
	}
	for _, v := range right {
		e.Tokens().Add(e.Tokens().NewToken(p.Input(1), nil, domain.Int(v)))
	}
	return e, io, rec, p
}

func TestEvaluator_CartesianProduct(t *testing.T) {
	e, io, rec, p := plusWithInputs(t, PolicyCartesian, []int64{2, 3}, []int64{10, 20})

	mustStride(t, e, 1)

	if got := rec.Count(events.KindNodeFired); got != 4 {
		t.Fatalf("expected 4 firings, got %d", got)
	}
	if e.Tokens().Occupied(p.Input(0)) || e.Tokens().Occupied(p.Input(1)) {
		t.Error("all input tokens must be consumed")
	}
	if got := len(e.Tokens().AtTerminal(p.Output(0))); got != 4 {
		t.Errorf("expected 4 output tokens, got %d", got)
	}

	// Output тоже срабатывает по разу на каждый токен
	mustStride(t, e, 2)
	if got := io.ints(0); !equalInts(got, []int64{12, 22, 13, 23}) {
		t.Errorf("expected [12 22 13 23], got %v", got)
	}
}

func TestEvaluator_SingleTakesFirstToken(t *testing.T) {
	e, io, rec, p := plusWithInputs(t, PolicySingle, []int64{2, 3}, []int64{10, 20})

	mustStride(t, e, 1)
	if got := rec.Count(events.KindNodeFired); got != 1 {
		t.Fatalf("expected 1 firing, got %d", got)
	}
	if got := len(e.Tokens().AtTerminal(p.Input(0))); got != 1 {
		t.Errorf("expected 1 remaining token on input 0, got %d", got)
	}

	mustStride(t, e, 4)
	if got := io.ints(0); !equalInts(got, []int64{12, 23}) {
		t.Errorf("expected [12 23], got %v", got)
	}
}

func TestEvaluator_ContractViolationLeavesStoreUntouched(t *testing.T) {
	for _, policy := range []FiringPolicy{PolicySingle, PolicyCartesian} {
		t.Run(policy.String(), func(t *testing.T) {
			g := NewGraph()
			p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})

			e := NewEvaluator(g, nil, Config{Policy: policy})
			store := e.Tokens()
			store.Add(store.NewToken(p.Input(0), nil, domain.Tuple(domain.Int(1), domain.Int(2))))
			store.Add(store.NewToken(p.Input(1), nil, domain.Int(5)))

			err := e.Step()
			if !errors.Is(err, ErrContractViolation) || !errors.Is(err, ErrNonNumericOperand) {
				t.Fatalf("expected non-numeric contract violation, got %v", err)
			}
			if store.Len() != 2 {
				t.Errorf("store must be untouched, got %d tokens", store.Len())
			}
			if e.Steps() != 0 {
				t.Errorf("failed step must not count, got %d", e.Steps())
			}

			// Повтор даёт ту же ошибку: позиция планировщика не сдвинулась
			if err := e.Step(); !errors.Is(err, ErrNonNumericOperand) {
				t.Errorf("expected same error on retry, got %v", err)
			}
		})
	}
}

func TestEvaluator_CartesianIsAtomic(t *testing.T) {
	g := NewGraph()
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})

	e := NewEvaluator(g, nil, Config{Policy: PolicyCartesian})
	store := e.Tokens()
	store.Add(store.NewToken(p.Input(0), nil, domain.Int(1)))
	store.Add(store.NewToken(p.Input(0), nil, domain.Tuple(domain.Int(1), domain.Int(2))))
	store.Add(store.NewToken(p.Input(1), nil, domain.Int(2)))

	if err := e.Stride(); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	// Первая комбинация валидна, но ничего не применено
	if store.Len() != 3 || store.Occupied(p.Output(0)) {
		t.Errorf("store must be untouched, got %d tokens", store.Len())
	}
}

func TestEvaluator_ConditionGating(t *testing.T) {
	tests := []struct {
		value    int64
		wantZero []int64
		wantOne  []int64
	}{
		{0, []int64{0}, nil},
		{1, nil, []int64{1}},
		{2, nil, nil},
	}

	for _, tt := range tests {
		t.Run(domain.Int(tt.value).String(), func(t *testing.T) {
			g := NewGraph()
			c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: tt.value})
			zero := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})
			one := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 1})
			mustConnect(t, g, c.Output(0), zero.Input(0), Zero())
			mustConnect(t, g, c.Output(0), one.Input(0), One())

			io := newFakeIO()
			e := NewEvaluator(g, io, Config{})
			mustStride(t, e, 3)

			if got := io.ints(0); !equalInts(got, tt.wantZero) {
				t.Errorf("[0] edge: expected %v, got %v", tt.wantZero, got)
			}
			if got := io.ints(1); !equalInts(got, tt.wantOne) {
				t.Errorf("[1] edge: expected %v, got %v", tt.wantOne, got)
			}
		})
	}
}

func TestEvaluator_NullResultConsumesNothing(t *testing.T) {
	g := NewGraph()
	in := mustAdd(t, g, domain.KindInput, domain.NodeSettings{Channel: 0})
	o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})
	mustConnect(t, g, in.Output(0), o.Input(0), nil)

	io := newFakeIO()
	bus, rec := recorded()
	e := NewEvaluator(g, io, Config{Bus: bus})

	// Канал пуст: input повторяет попытку в каждой фазе
	mustStride(t, e, 4)
	if rec.Count(events.KindNodeFired) != 0 {
		t.Fatalf("exhausted input must not fire")
	}

	io.inputs[0] = domain.Ints([]int64{4, 6})
	mustStride(t, e, 6)
	if got := io.ints(0); !equalInts(got, []int64{4, 6}) {
		t.Errorf("expected [4 6], got %v", got)
	}
}

func TestEvaluator_Loop(t *testing.T) {
	// Счётчик: constant(1) → plus ← nop ← plus; plus → output
	g := NewGraph()
	seed := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 0})
	step := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1, Repeat: true})
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})
	o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})

	mustConnect(t, g, seed.Output(0), p.Input(0), nil)
	mustConnect(t, g, step.Output(0), p.Input(1), nil)
	mustConnect(t, g, p.Output(0), p.Input(0), nil)
	mustConnect(t, g, p.Output(0), o.Input(0), nil)

	io := newFakeIO()
	e := NewEvaluator(g, io, Config{Policy: PolicySingle})
	mustStride(t, e, 12)

	got := io.ints(0)
	if len(got) < 3 {
		t.Fatalf("expected at least 3 outputs, got %v", got)
	}
	for i, v := range got {
		if v != int64(i+1) {
			t.Fatalf("expected counter sequence 1,2,3..., got %v", got)
		}
	}
}

func TestEvaluator_DropsTokenToRemovedNode(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	n := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	mustConnect(t, g, c.Output(0), n.Input(0), nil)

	e := NewEvaluator(g, nil, Config{})
	mustStride(t, e, 1)

	g.RemoveNode(n.ID)
	mustStride(t, e, 1)

	if e.Tokens().Len() != 0 {
		t.Errorf("token heading to removed node must be dropped, got %d", e.Tokens().Len())
	}
}

func TestEvaluator_DropsTokensOnRemovedNode(t *testing.T) {
	g := NewGraph()
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})

	e := NewEvaluator(g, nil, Config{})
	store := e.Tokens()
	// Второй вход пуст: узел не готов, токен ждёт на первом входе
	store.Add(store.NewToken(p.Input(0), nil, domain.Int(1)))

	g.RemoveNode(p.ID)
	mustStride(t, e, 1)

	if store.Len() != 0 {
		t.Errorf("token on removed node must be dropped, got %d", store.Len())
	}
	if store.InFlight() != 0 {
		t.Errorf("expected nothing in flight, got %d", store.InFlight())
	}
}

func TestEvaluator_AbortedBatchKeepsTokenIDs(t *testing.T) {
	g := NewGraph()
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})
	o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{Channel: 0})
	mustConnect(t, g, p.Output(0), o.Input(0), nil)

	e := NewEvaluator(g, newFakeIO(), Config{Policy: PolicyCartesian})
	store := e.Tokens()
	store.Add(store.NewToken(p.Input(0), nil, domain.Int(1)))
	store.Add(store.NewToken(p.Input(0), nil, domain.Tuple(domain.Int(1), domain.Int(2))))
	store.Add(store.NewToken(p.Input(1), nil, domain.Int(2)))

	if err := e.Stride(); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if e.Firings() != 0 {
		t.Errorf("aborted batch must not count firings, got %d", e.Firings())
	}

	next := store.NewToken(p.Input(0), nil, domain.Int(3))
	if next.ID != 3 {
		t.Errorf("expected next token id 3, got %d", next.ID)
	}
}

func TestEvaluator_Deterministic(t *testing.T) {
	run := func() []events.Event {
		g := NewGraph()
		a := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 2, Repeat: true})
		b := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 3, Repeat: true})
		m := mustAdd(t, g, domain.KindMultiply, domain.NodeSettings{})
		cb := mustAdd(t, g, domain.KindCombine, domain.NodeSettings{})
		s := mustAdd(t, g, domain.KindSplit, domain.NodeSettings{})
		o := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{})

		mustConnect(t, g, a.Output(0), m.Input(0), nil)
		mustConnect(t, g, b.Output(0), m.Input(1), nil)
		mustConnect(t, g, m.Output(0), cb.Input(0), nil)
		mustConnect(t, g, a.Output(0), cb.Input(1), nil)
		mustConnect(t, g, cb.Output(0), s.Input(0), Condition{domain.MatchWild, domain.MatchWild})
		mustConnect(t, g, s.Output(0), o.Input(0), nil)

		bus, rec := recorded()
		e := NewEvaluator(g, newFakeIO(), Config{Policy: PolicyCartesian, Bus: bus})
		mustStride(t, e, 20)
		return rec.Events()
	}

	first, second := run(), run()
	if len(first) == 0 {
		t.Fatal("expected some events")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs from a fresh state must produce identical traces")
	}
}
