package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Pulse/internal/domain"
)

func TestGraph_AddNode_SequentialIDs(t *testing.T) {
	g := NewGraph()

	a := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	b := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})
	c := mustAdd(t, g, domain.KindSplit, domain.NodeSettings{})

	if a.ID != 0 || b.ID != 1 || c.ID != 2 {
		t.Errorf("expected IDs 0,1,2, got %d,%d,%d", a.ID, b.ID, c.ID)
	}
	if g.Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.Len())
	}

	// Арность из типа
	if b.NumInputs != 2 || b.NumOutputs != 1 {
		t.Errorf("plus: expected 2/1 terminals, got %d/%d", b.NumInputs, b.NumOutputs)
	}
	if c.NumInputs != 1 || c.NumOutputs != 2 {
		t.Errorf("split: expected 1/2 terminals, got %d/%d", c.NumInputs, c.NumOutputs)
	}
}

func TestGraph_InsertNode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       domain.NodeID
		kind     domain.NodeKind
		settings domain.NodeSettings
		wantErr  error
	}{
		{"unknown kind", 5, "divide", domain.NodeSettings{}, ErrUnknownNodeKind},
		{"empty kind", 5, "", domain.NodeSettings{}, ErrUnknownNodeKind},
		{"duplicate id", 0, domain.KindNop, domain.NodeSettings{}, ErrDuplicateNodeID},
		{"negative input channel", 5, domain.KindInput, domain.NodeSettings{Channel: -1}, ErrNegativeChannel},
		{"negative output channel", 5, domain.KindOutput, domain.NodeSettings{Channel: -2}, ErrNegativeChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			mustAdd(t, g, domain.KindNop, domain.NodeSettings{})

			_, err := g.InsertNode(tt.id, tt.kind, tt.settings, domain.Position{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if g.Len() != 1 {
				t.Errorf("graph must be unchanged, got %d nodes", g.Len())
			}
		})
	}
}

func TestGraph_InsertNode_AdvancesNextID(t *testing.T) {
	g := NewGraph()

	if _, err := g.InsertNode(10, domain.KindNop, domain.NodeSettings{}, domain.Position{X: 1, Y: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	if n.ID != 11 {
		t.Errorf("expected next ID 11, got %d", n.ID)
	}
}

func TestGraph_Connect_Errors(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})

	tests := []struct {
		name    string
		from    domain.Terminal
		to      domain.Terminal
		cond    Condition
		wantErr error
	}{
		{"input to input", p.Input(0), p.Input(1), nil, ErrTerminalDirection},
		{"output to output", c.Output(0), p.Output(0), nil, ErrTerminalDirection},
		{"unknown source node", domain.OutputOf(42, 0), p.Input(0), nil, ErrUnknownNode},
		{"unknown target node", c.Output(0), domain.InputOf(42, 0), nil, ErrUnknownNode},
		{"output index out of range", c.Output(1), p.Input(0), nil, ErrTerminalOutOfRange},
		{"input index out of range", c.Output(0), p.Input(2), nil, ErrTerminalOutOfRange},
		{"negative index", c.Output(0), p.Input(-1), nil, ErrTerminalOutOfRange},
		{"unknown matcher", c.Output(0), p.Input(0), Condition{"2"}, ErrUnknownMatcher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Connect(tt.from, tt.to, tt.cond)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(g.Connections()) != 0 {
		t.Errorf("expected no connections, got %d", len(g.Connections()))
	}
}

func TestGraph_Connect_FanOutAndCycles(t *testing.T) {
	g := NewGraph()
	c := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	n := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	p := mustAdd(t, g, domain.KindPlus, domain.NodeSettings{})

	mustConnect(t, g, c.Output(0), p.Input(0), nil)
	mustConnect(t, g, c.Output(0), n.Input(0), Zero())
	// Цикл nop → plus → nop допустим
	mustConnect(t, g, p.Output(0), n.Input(0), nil)
	mustConnect(t, g, n.Output(0), p.Input(1), nil)

	out := g.Outgoing(c.Output(0))
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing connections, got %d", len(out))
	}
	if out[0].To != p.Input(0) || out[1].To != n.Input(0) {
		t.Errorf("outgoing order must follow insertion, got %s, %s", out[0], out[1])
	}
	if out[1].Condition.String() != "[0]" {
		t.Errorf("expected condition [0], got %s", out[1].Condition)
	}
}

func TestGraph_RemoveNode(t *testing.T) {
	g := NewGraph()
	a := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	b := mustAdd(t, g, domain.KindNop, domain.NodeSettings{})
	c := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{})

	mustConnect(t, g, a.Output(0), b.Input(0), nil)
	mustConnect(t, g, b.Output(0), c.Input(0), nil)

	if !g.RemoveNode(b.ID) {
		t.Fatal("expected RemoveNode to succeed")
	}
	if g.RemoveNode(b.ID) {
		t.Error("second RemoveNode must return false")
	}

	if g.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.Len())
	}
	if len(g.Connections()) != 0 {
		t.Errorf("connections of removed node must be dropped, got %d", len(g.Connections()))
	}
	if len(g.Outgoing(a.Output(0))) != 0 {
		t.Error("outgoing index must be rebuilt")
	}
	if g.HasTerminal(b.Input(0)) {
		t.Error("terminal of removed node must not exist")
	}
}

func TestGraph_Disconnect(t *testing.T) {
	g := NewGraph()
	a := mustAdd(t, g, domain.KindConstant, domain.NodeSettings{Value: 1})
	b := mustAdd(t, g, domain.KindOutput, domain.NodeSettings{})

	conn := mustConnect(t, g, a.Output(0), b.Input(0), nil)

	if !g.Disconnect(conn) {
		t.Fatal("expected Disconnect to succeed")
	}
	if g.Disconnect(conn) {
		t.Error("second Disconnect must return false")
	}
	if len(g.Outgoing(a.Output(0))) != 0 {
		t.Error("outgoing index must be empty")
	}
}

func TestBuildGraph_FromSpec(t *testing.T) {
	spec := &domain.GraphSpec{
		Version: SpecVersion,
		Nodes: []domain.NodeSpec{
			{ID: 3, Kind: domain.KindInput, Settings: domain.NodeSettings{Channel: 1}},
			{ID: 1, Kind: domain.KindConstant, Settings: domain.NodeSettings{Value: 7, Repeat: true}},
			{ID: 2, Kind: domain.KindPlus, Position: domain.Position{X: 100, Y: 50}},
			{ID: 4, Kind: domain.KindOutput},
		},
		Edges: []domain.EdgeSpec{
			{From: 3, FromIndex: 0, To: 2, ToIndex: 0},
			{From: 1, FromIndex: 0, To: 2, ToIndex: 1},
			{From: 2, FromIndex: 0, To: 4, ToIndex: 0, Condition: []domain.Matcher{domain.MatchWild}},
		},
	}

	g, err := BuildGraph(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Порядок узлов — порядок в GraphSpec, а не по ID
	wantOrder := []domain.NodeID{3, 1, 2, 4}
	for i, id := range wantOrder {
		if g.NodeAt(i).ID != id {
			t.Errorf("node %d: expected ID %d, got %d", i, id, g.NodeAt(i).ID)
		}
	}

	out := g.Spec()
	if out.Version != SpecVersion {
		t.Errorf("expected version %s, got %s", SpecVersion, out.Version)
	}
	if len(out.Nodes) != 4 || len(out.Edges) != 3 {
		t.Fatalf("expected 4 nodes and 3 edges, got %d and %d", len(out.Nodes), len(out.Edges))
	}
	if out.Nodes[1].Settings.Value != 7 || !out.Nodes[1].Settings.Repeat {
		t.Errorf("constant settings lost: %+v", out.Nodes[1].Settings)
	}
	if out.Nodes[2].Position.X != 100 {
		t.Errorf("position lost: %+v", out.Nodes[2].Position)
	}
	if len(out.Edges[2].Condition) != 1 || out.Edges[2].Condition[0] != domain.MatchWild {
		t.Errorf("condition lost: %v", out.Edges[2].Condition)
	}
}

func TestBuildGraph_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    *domain.GraphSpec
		wantErr error
	}{
		{
			name:    "unsupported version",
			spec:    &domain.GraphSpec{Version: "99"},
			wantErr: ErrUnsupportedVersion,
		},
		{
			name: "duplicate node",
			spec: &domain.GraphSpec{Nodes: []domain.NodeSpec{
				{ID: 1, Kind: domain.KindNop},
				{ID: 1, Kind: domain.KindNop},
			}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name: "edge to missing node",
			spec: &domain.GraphSpec{
				Nodes: []domain.NodeSpec{{ID: 1, Kind: domain.KindNop}},
				Edges: []domain.EdgeSpec{{From: 1, To: 2}},
			},
			wantErr: ErrUnknownNode,
		},
		{
			name: "edge from output node",
			spec: &domain.GraphSpec{
				Nodes: []domain.NodeSpec{
					{ID: 1, Kind: domain.KindOutput},
					{ID: 2, Kind: domain.KindNop},
				},
				Edges: []domain.EdgeSpec{{From: 1, To: 2}},
			},
			wantErr: ErrTerminalOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSpec(tt.spec); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildGraph_NilAndEmpty(t *testing.T) {
	g, err := BuildGraph(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.Len())
	}

	if err := ValidateSpec(&domain.GraphSpec{}); err != nil {
		t.Errorf("empty graph must be valid, got %v", err)
	}
}
