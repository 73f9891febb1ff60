package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pulse/internal/events"
	"github.com/shaiso/Pulse/internal/levels"
	"github.com/shaiso/Pulse/internal/session"
)

// solveResult — JSON-вывод команды solve.
type solveResult struct {
	Level  string         `json:"level"`
	Policy string         `json:"policy"`
	Result session.Result `json:"result"`
}

// NewSolveCmd создаёт команду локального прогона графа на тестах уровня.
func NewSolveCmd(outputFn func() *Output) *cobra.Command {
	var (
		levelID    string
		graphPath  string
		policy     string
		maxStrides int
		trace      bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run a graph against a level's test cases locally",
		Long: `Runs the graph from --graph against every test case of --level
without a server. Exits with an error unless all test cases pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			level, err := levels.Builtin().Get(levelID)
			if err != nil {
				return err
			}
			spec, err := ReadGraphFile(graphPath)
			if err != nil {
				return err
			}

			res, evs, err := session.RunHeadless(cmd.Context(), session.Headless{
				Spec:       spec,
				Level:      level,
				Policy:     policy,
				MaxStrides: maxStrides,
				Trace:      trace,
			})
			if err != nil {
				return err
			}

			if trace && !out.jsonMode {
				for _, e := range evs {
					out.Line("%s", describeEvent(e))
				}
				out.Line("")
			}

			if policy == "" {
				policy = "single"
			}
			out.Details([][2]string{
				{"Level", levelSummary(level)},
				{"Policy", policy},
				{"Outcome", string(res.Outcome)},
				{"Cases", fmt.Sprintf("%d/%d", res.PassedCases, res.TotalCases)},
				{"Strides", strconv.Itoa(res.Strides)},
				{"Steps", strconv.Itoa(res.Steps)},
				{"Error", res.Error},
			}, solveResult{Level: level.ID, Policy: policy, Result: res})

			return res.Err()
		},
	}

	cmd.Flags().StringVar(&levelID, "level", "", "Level ID (required)")
	cmd.Flags().StringVar(&graphPath, "graph", "", "Graph file, JSON or YAML; - for stdin (required)")
	cmd.Flags().StringVar(&policy, "policy", "", "Firing policy: single or cartesian")
	cmd.Flags().IntVar(&maxStrides, "max-strides", session.DefaultMaxStrides, "Stride budget")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every simulation event")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

// describeEvent форматирует событие симуляции одной строкой.
func describeEvent(e events.Event) string {
	switch ev := e.(type) {
	case events.NodeFired:
		return fmt.Sprintf("%-18s node=%d in=%s out=%s", e.Kind(), ev.Node, values(ev.Consumed), values(ev.Produced))
	case events.TokenAdvanced:
		return fmt.Sprintf("%-18s token=%d %s -> %s", e.Kind(), ev.Token, ev.From, ev.To)
	case events.TestCaseStarted:
		return fmt.Sprintf("%-18s case=%d", e.Kind(), ev.Index)
	case events.TestCasePassed:
		return fmt.Sprintf("%-18s case=%d", e.Kind(), ev.Index)
	case events.InputProduced:
		return fmt.Sprintf("%-18s channel=%d seq=%d", e.Kind(), ev.Channel, ev.Sequence)
	case events.ExpectedOutputMatched:
		return fmt.Sprintf("%-18s channel=%d seq=%d", e.Kind(), ev.Channel, ev.Sequence)
	case events.UnexpectedOutput:
		expected := "none"
		if ev.Expected != nil {
			expected = ev.Expected.String()
		}
		return fmt.Sprintf("%-18s channel=%d seq=%d expected=%s actual=%s",
			e.Kind(), ev.Channel, ev.Sequence, expected, ev.Actual)
	default:
		return string(e.Kind())
	}
}

func values(refs []events.TokenRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.Value.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
