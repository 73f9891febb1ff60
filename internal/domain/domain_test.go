package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		json  string
	}{
		{"scalar", Int(7), `7`},
		{"negative", Int(-3), `-3`},
		{"pair", Tuple(Int(1), Int(2)), `[1,2]`},
		{"nested", Tuple(Tuple(Int(0), Int(1)), Int(5)), `[[0,1],5]`},
		{"empty tuple", Tuple(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("marshal = %s, want %s", data, tt.json)
			}

			var got Value
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !got.Equal(tt.value) {
				t.Errorf("unmarshal = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestValue_UnmarshalRejectsNonInteger(t *testing.T) {
	for _, in := range []string{`1.5`, `"7"`, `true`, `{}`} {
		var v Value
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Errorf("unmarshal %s: expected error, got %s", in, v)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	if Int(1).Equal(Tuple(Int(1))) {
		t.Error("scalar must not equal a one-element tuple")
	}
	if Tuple(Int(1), Int(2)).Equal(Tuple(Int(2), Int(1))) {
		t.Error("tuple equality must respect order")
	}
	if !Tuple(Int(1), Tuple(Int(2))).Equal(Tuple(Int(1), Tuple(Int(2)))) {
		t.Error("nested tuples must compare structurally")
	}
	if !(Value{}).Equal(Int(0)) {
		t.Error("zero Value must be scalar 0")
	}
}

func TestValue_TupleCopiesItems(t *testing.T) {
	items := []Value{Int(1), Int(2)}
	v := Tuple(items...)
	items[0] = Int(9)

	if n, _ := v.At(0).Int(); n != 1 {
		t.Errorf("At(0) = %d, want 1", n)
	}
	got := v.Items()
	got[1] = Int(9)
	if n, _ := v.At(1).Int(); n != 2 {
		t.Errorf("At(1) = %d after mutating Items(), want 2", n)
	}
}

func TestNodeKind_Arity(t *testing.T) {
	tests := []struct {
		kind    NodeKind
		in, out int
	}{
		{KindPlus, 2, 1},
		{KindMultiply, 2, 1},
		{KindCombine, 2, 1},
		{KindSplit, 1, 2},
		{KindNop, 1, 1},
		{KindConstant, 0, 1},
		{KindInput, 0, 1},
		{KindOutput, 1, 0},
	}
	for _, tt := range tests {
		in, out, ok := tt.kind.Arity()
		if !ok || in != tt.in || out != tt.out {
			t.Errorf("%s.Arity() = %d, %d, %v; want %d, %d", tt.kind, in, out, ok, tt.in, tt.out)
		}
	}

	if _, _, ok := NodeKind("divide").Arity(); ok {
		t.Error("unknown kind must report ok=false")
	}
	if len(NodeKinds()) != len(tests) {
		t.Errorf("NodeKinds() has %d kinds, want %d", len(NodeKinds()), len(tests))
	}
}

func TestLevel_Validate(t *testing.T) {
	ok := &Level{ID: "ok", TestCases: []TestCase{
		{Inputs: [][]int64{{1}, {2}}, Outputs: [][]int64{{3}}},
		{Inputs: [][]int64{{4}, {5}}, Outputs: [][]int64{{9}}},
	}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if in, out := ok.Channels(); in != 2 || out != 1 {
		t.Errorf("Channels() = %d, %d; want 2, 1", in, out)
	}

	empty := &Level{ID: "empty"}
	if err := empty.Validate(); !errors.Is(err, ErrNoTestCases) {
		t.Errorf("empty: got %v, want ErrNoTestCases", err)
	}

	mismatch := &Level{ID: "bad", TestCases: []TestCase{
		{Inputs: [][]int64{{1}}, Outputs: [][]int64{{1}}},
		{Inputs: [][]int64{{1}, {2}}, Outputs: [][]int64{{3}}},
	}}
	if err := mismatch.Validate(); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("mismatch: got %v, want ErrChannelMismatch", err)
	}

	silent := &Level{ID: "silent", TestCases: []TestCase{
		{Inputs: [][]int64{{1}}, Outputs: [][]int64{{1}}},
		{Inputs: [][]int64{{2}}, Outputs: [][]int64{{}}},
	}}
	if err := silent.Validate(); !errors.Is(err, ErrNoExpectedOutputs) {
		t.Errorf("silent: got %v, want ErrNoExpectedOutputs", err)
	}
}

func TestGrade_Lifecycle(t *testing.T) {
	g := &Grade{Status: GradeStatusPending}
	if g.IsFinished() {
		t.Fatal("pending grade must not be finished")
	}

	g.MarkRunning()
	if g.Status != GradeStatusRunning || g.StartedAt == nil {
		t.Fatalf("after MarkRunning: %+v", g)
	}
	if g.Duration() != 0 {
		t.Error("unfinished grade must have zero duration")
	}

	g.MarkFailed("wrong output")
	if g.Status != GradeStatusFailed || g.Error != "wrong output" || g.FinishedAt == nil {
		t.Fatalf("after MarkFailed: %+v", g)
	}
	if !g.IsFinished() {
		t.Error("failed grade must be finished")
	}
	if g.Duration() < 0 {
		t.Errorf("Duration = %v", g.Duration())
	}
}

func TestParseGradeStatus(t *testing.T) {
	for _, s := range []GradeStatus{
		GradeStatusPending, GradeStatusRunning, GradeStatusPassed,
		GradeStatusFailed, GradeStatusTimedOut, GradeStatusError,
	} {
		if got := ParseGradeStatus(s.String()); got != s {
			t.Errorf("ParseGradeStatus(%q) = %q", s, got)
		}
	}
	if got := ParseGradeStatus("bogus"); got != GradeStatusPending {
		t.Errorf("unknown status parsed as %q, want PENDING", got)
	}
}
