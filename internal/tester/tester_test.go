package tester

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/engine"
	"github.com/shaiso/Pulse/internal/events"
)

func additionLevel() *domain.Level {
	return &domain.Level{
		ID:   "addition",
		Name: "Addition",
		TestCases: []domain.TestCase{
			{Inputs: [][]int64{{3, 5, 7}, {7, 8, 10}}, Outputs: [][]int64{{10, 13, 17}}},
			{Inputs: [][]int64{{1, 3, 5}, {2, 4, 6}}, Outputs: [][]int64{{3, 7, 11}}},
		},
	}
}

func newTester(t *testing.T, level *domain.Level) (*Tester, *events.Recorder) {
	t.Helper()

	bus := events.NewBus()
	rec := events.NewRecorder(0)
	bus.Subscribe(rec.Listener())

	tst, err := New(level, bus, nil)
	require.NoError(t, err)
	tst.Start()
	return tst, rec
}

// feed читает все входы текущего теста и отдаёт суммы на выход 0.
func feed(t *testing.T, tst *Tester) {
	t.Helper()
	start := tst.CaseIndex()
	for !tst.Done() && tst.CaseIndex() == start {
		a, okA := tst.Input(0)
		b, okB := tst.Input(1)
		if !okA || !okB {
			return
		}
		x, _ := a.Int()
		y, _ := b.Int()
		require.NoError(t, tst.CheckOutput(0, domain.Int(x+y)))
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)

	_, err = New(&domain.Level{ID: "empty"}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoTestCases)

	_, err = New(&domain.Level{ID: "mismatch", TestCases: []domain.TestCase{
		{Inputs: [][]int64{{1}}, Outputs: [][]int64{{1}}},
		{Inputs: [][]int64{{1}, {2}}, Outputs: [][]int64{{3}}},
	}}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrChannelMismatch)

	// Тест без ожидаемых значений никогда не завершился бы
	_, err = New(&domain.Level{ID: "silent", TestCases: []domain.TestCase{
		{Inputs: [][]int64{{1}}, Outputs: [][]int64{{}}},
	}}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoExpectedOutputs)
}

func TestTester_Input(t *testing.T) {
	tst, rec := newTester(t, additionLevel())

	v, ok := tst.Input(0)
	require.True(t, ok)
	n, _ := v.Int()
	assert.Equal(t, int64(3), n)

	v, ok = tst.Input(1)
	require.True(t, ok)
	n, _ = v.Int()
	assert.Equal(t, int64(7), n)

	// Несуществующие каналы
	_, ok = tst.Input(2)
	assert.False(t, ok)
	_, ok = tst.Input(-1)
	assert.False(t, ok)

	// Исчерпание канала 0
	tst.Input(0)
	tst.Input(0)
	_, ok = tst.Input(0)
	assert.False(t, ok)

	assert.Equal(t, 4, rec.Count(events.KindInputProduced))

	evs := rec.Events()
	assert.Equal(t, events.TestCaseStarted{Index: 0}, evs[0])
	assert.Equal(t, events.InputProduced{Channel: 0, Sequence: 0}, evs[1])
	assert.Equal(t, events.InputProduced{Channel: 1, Sequence: 0}, evs[2])
}

func TestTester_AllCasesPass(t *testing.T) {
	tst, rec := newTester(t, additionLevel())

	feed(t, tst)
	assert.Equal(t, 1, tst.CaseIndex())
	assert.Equal(t, 1, tst.Passed())
	assert.False(t, tst.Done())

	feed(t, tst)
	assert.True(t, tst.Done())
	assert.Equal(t, 2, tst.Passed())
	assert.Equal(t, 2, tst.Total())

	assert.Equal(t, 6, rec.Count(events.KindExpectedOutputMatched))
	assert.Equal(t, 2, rec.Count(events.KindTestCasePassed))
	assert.Equal(t, 2, rec.Count(events.KindTestCaseStarted))
	assert.Equal(t, 1, rec.Count(events.KindAllTestsPassed))
	assert.Zero(t, rec.Count(events.KindUnexpectedOutput))

	// Последнее событие — AllTestsPassed
	evs := rec.Events()
	assert.Equal(t, events.AllTestsPassed{}, evs[len(evs)-1])

	// После прохождения всё игнорируется
	_, ok := tst.Input(0)
	assert.False(t, ok)
	assert.NoError(t, tst.CheckOutput(0, domain.Int(99)))
	assert.Zero(t, rec.Count(events.KindUnexpectedOutput))
}

func TestTester_WrongOutput(t *testing.T) {
	tst, rec := newTester(t, additionLevel())

	tst.Input(0)
	tst.Input(1)
	require.NoError(t, tst.CheckOutput(0, domain.Int(11)))

	assert.True(t, tst.Failed())
	require.Equal(t, 1, rec.Count(events.KindUnexpectedOutput))

	var got events.UnexpectedOutput
	for _, e := range rec.Events() {
		if u, ok := e.(events.UnexpectedOutput); ok {
			got = u
		}
	}
	assert.Equal(t, 0, got.Channel)
	assert.Equal(t, 0, got.Sequence)
	require.NotNil(t, got.Expected)
	assert.True(t, got.Expected.Equal(domain.Int(10)))
	assert.True(t, got.Actual.Equal(domain.Int(11)))

	// Проваленный тест не переходит к следующему, даже если остальные выходы верные
	for i := 0; i < 2; i++ {
		tst.Input(0)
		tst.Input(1)
	}
	require.NoError(t, tst.CheckOutput(0, domain.Int(13)))
	require.NoError(t, tst.CheckOutput(0, domain.Int(17)))
	assert.Equal(t, 0, tst.CaseIndex())
	assert.Zero(t, rec.Count(events.KindTestCasePassed))
}

func TestTester_ExtraOutput(t *testing.T) {
	tst, rec := newTester(t, &domain.Level{
		ID: "single",
		TestCases: []domain.TestCase{
			{Inputs: [][]int64{{1}}, Outputs: [][]int64{{1}, {2}}},
		},
	})

	// Канал вне диапазона
	require.NoError(t, tst.CheckOutput(5, domain.Int(1)))
	assert.True(t, tst.Failed())

	var got events.UnexpectedOutput
	for _, e := range rec.Events() {
		if u, ok := e.(events.UnexpectedOutput); ok {
			got = u
		}
	}
	assert.Equal(t, 5, got.Channel)
	assert.Nil(t, got.Expected)

	// Лишнее значение в существующем канале
	tst2, rec2 := newTester(t, &domain.Level{
		ID: "single",
		TestCases: []domain.TestCase{
			{Inputs: [][]int64{{1}}, Outputs: [][]int64{{1}, {2}}},
		},
	})
	tst2.Input(0)
	require.NoError(t, tst2.CheckOutput(0, domain.Int(1)))
	require.NoError(t, tst2.CheckOutput(0, domain.Int(1)))
	assert.True(t, tst2.Failed())
	assert.Equal(t, 1, rec2.Count(events.KindUnexpectedOutput))
}

func TestTester_InputsRemaining(t *testing.T) {
	tst, _ := newTester(t, &domain.Level{
		ID: "leftover",
		TestCases: []domain.TestCase{
			{Inputs: [][]int64{{1, 2}}, Outputs: [][]int64{{1}}},
		},
	})

	tst.Input(0)
	err := tst.CheckOutput(0, domain.Int(1))

	assert.ErrorIs(t, err, ErrInputsRemaining)
	assert.ErrorIs(t, err, engine.ErrContractViolation)
	assert.False(t, tst.Done())
}

func TestTester_StartResets(t *testing.T) {
	tst, rec := newTester(t, additionLevel())

	feed(t, tst)
	tst.Input(0)
	require.Equal(t, 1, tst.CaseIndex())

	tst.Start()
	assert.Equal(t, 0, tst.CaseIndex())
	assert.Zero(t, tst.Passed())

	v, ok := tst.Input(0)
	require.True(t, ok)
	n, _ := v.Int()
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3, rec.Count(events.KindTestCaseStarted))
}
