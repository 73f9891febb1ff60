package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/levels"
)

// NewLevelCmd создаёт группу команд для встроенных уровней.
// Уровни читаются из каталога, вшитого в бинарник; сервер не нужен.
func NewLevelCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Browse built-in levels",
	}

	cmd.AddCommand(
		newLevelListCmd(outputFn),
		newLevelShowCmd(outputFn),
	)

	return cmd
}

func newLevelListCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			all := levels.Builtin().List()

			headers := []string{"ID", "NAME", "INPUTS", "OUTPUTS", "CASES"}
			rows := make([][]string, len(all))
			for i, l := range all {
				ins, outs := l.Channels()
				rows[i] = []string{l.ID, l.Name, strconv.Itoa(ins), strconv.Itoa(outs), strconv.Itoa(len(l.TestCases))}
			}

			out.Print(headers, rows, all)
			return nil
		},
	}
}

func newLevelShowCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show LEVEL_ID",
		Short: "Show level description and test cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			level, err := levels.Builtin().Get(args[0])
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(level)
				return nil
			}

			out.Details([][2]string{
				{"ID", level.ID},
				{"Name", level.Name},
				{"Description", level.Description},
			}, nil)
			out.Line("")

			headers := []string{"CASE", "INPUTS", "EXPECTED"}
			rows := make([][]string, len(level.TestCases))
			for i, tc := range level.TestCases {
				rows[i] = []string{strconv.Itoa(i), channels(tc.Inputs), channels(tc.Outputs)}
			}
			out.Table(headers, rows)
			return nil
		},
	}
}

// channels форматирует последовательности каналов: "in0=[1 2] in1=[3 4]".
func channels(seqs [][]int64) string {
	parts := make([]string, len(seqs))
	for i, seq := range seqs {
		parts[i] = fmt.Sprintf("%d=%v", i, seq)
	}
	return strings.Join(parts, " ")
}

// levelSummary — строка таблицы результата для уровня.
func levelSummary(l *domain.Level) string {
	return fmt.Sprintf("%s (%d cases)", l.ID, len(l.TestCases))
}
