package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewGradeCmd создаёт группу команд для проверок.
func NewGradeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Submit solutions for grading and inspect results",
	}

	cmd.AddCommand(
		newGradeSubmitCmd(clientFn, outputFn),
		newGradeShowCmd(clientFn, outputFn),
		newGradeListCmd(clientFn, outputFn),
	)

	return cmd
}

func newGradeSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var policy, key string

	cmd := &cobra.Command{
		Use:   "submit SOLUTION_ID",
		Short: "Queue a grade for a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			g, err := client.SubmitGrade(args[0], SubmitGradeRequest{
				Policy:         policy,
				IdempotencyKey: key,
			})
			if err != nil {
				return err
			}

			out.Success("Grade " + g.ID + " " + g.Status)
			out.Print(gradeHeaders, [][]string{gradeRow(g)}, g)
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Firing policy: single or cartesian")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse the grade created with this key")

	return cmd
}

func newGradeShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show GRADE_ID",
		Short: "Show grade details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			g, err := client.GetGrade(args[0])
			if err != nil {
				return err
			}

			out.Details([][2]string{
				{"ID", g.ID},
				{"Solution", g.SolutionID},
				{"Level", g.LevelID},
				{"Policy", g.Policy},
				{"Status", g.Status},
				{"Cases", fmt.Sprintf("%d/%d", g.PassedCases, g.TotalCases)},
				{"Strides", strconv.Itoa(g.Strides)},
				{"Steps", strconv.Itoa(g.Steps)},
				{"Error", g.Error},
				{"Created", g.CreatedAt},
				{"Started", g.StartedAt},
				{"Finished", g.FinishedAt},
			}, g)
			return nil
		},
	}
}

func newGradeListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var solutionID, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List grades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			grades, err := client.ListGrades(ListGradesOpts{
				SolutionID: solutionID,
				Status:     status,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(grades))
			for i := range grades {
				rows[i] = gradeRow(&grades[i])
			}
			out.Print(gradeHeaders, rows, grades)
			return nil
		},
	}

	cmd.Flags().StringVar(&solutionID, "solution", "", "Filter by solution ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, PASSED, FAILED, TIMED_OUT, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

var gradeHeaders = []string{"ID", "SOLUTION", "LEVEL", "STATUS", "CASES", "STRIDES", "CREATED"}

func gradeRow(g *GradeResponse) []string {
	return []string{
		g.ID,
		g.SolutionID,
		g.LevelID,
		g.Status,
		fmt.Sprintf("%d/%d", g.PassedCases, g.TotalCases),
		strconv.Itoa(g.Strides),
		g.CreatedAt,
	}
}
