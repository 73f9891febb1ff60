package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewSolutionCmd создаёт группу команд для управления решениями.
func NewSolutionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solution",
		Short: "Manage saved solutions",
	}

	cmd.AddCommand(
		newSolutionSubmitCmd(clientFn, outputFn),
		newSolutionShowCmd(clientFn, outputFn),
		newSolutionListCmd(clientFn, outputFn),
		newSolutionDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newSolutionSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var levelID, graphPath, name string
	var grade bool
	var policy string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Save a graph as a solution for a level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := ReadGraphFile(graphPath)
			if err != nil {
				return err
			}

			sol, err := client.CreateSolution(CreateSolutionRequest{
				LevelID: levelID,
				Name:    name,
				Graph:   *spec,
			})
			if err != nil {
				return err
			}
			out.Success("Solution " + sol.ID + " saved")

			if !grade {
				out.Print(solutionHeaders, [][]string{solutionRow(sol)}, sol)
				return nil
			}

			g, err := client.SubmitGrade(sol.ID, SubmitGradeRequest{Policy: policy})
			if err != nil {
				return err
			}
			out.Success("Grade " + g.ID + " queued")
			out.Print(gradeHeaders, [][]string{gradeRow(g)}, g)
			return nil
		},
	}

	cmd.Flags().StringVar(&levelID, "level", "", "Level ID (required)")
	cmd.Flags().StringVar(&graphPath, "graph", "", "Graph file, JSON or YAML (required)")
	cmd.Flags().StringVar(&name, "name", "", "Solution name")
	cmd.Flags().BoolVar(&grade, "grade", false, "Queue a grade right after saving")
	cmd.Flags().StringVar(&policy, "policy", "", "Firing policy for --grade: single or cartesian")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func newSolutionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show SOLUTION_ID",
		Short: "Show solution details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sol, err := client.GetSolution(args[0])
			if err != nil {
				return err
			}

			out.Details([][2]string{
				{"ID", sol.ID},
				{"Level", sol.LevelID},
				{"Name", sol.Name},
				{"Nodes", strconv.Itoa(len(sol.Graph.Nodes))},
				{"Edges", strconv.Itoa(len(sol.Graph.Edges))},
				{"Created", sol.CreatedAt},
			}, sol)
			return nil
		},
	}
}

func newSolutionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var levelID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List solutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			solutions, err := client.ListSolutions(ListSolutionsOpts{LevelID: levelID, Limit: limit})
			if err != nil {
				return err
			}

			rows := make([][]string, len(solutions))
			for i := range solutions {
				rows[i] = solutionRow(&solutions[i])
			}
			out.Print(solutionHeaders, rows, solutions)
			return nil
		},
	}

	cmd.Flags().StringVar(&levelID, "level", "", "Filter by level ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newSolutionDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SOLUTION_ID",
		Short: "Delete a solution and its grades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteSolution(args[0]); err != nil {
				return err
			}
			outputFn().Success("Solution " + args[0] + " deleted")
			return nil
		},
	}
}

var solutionHeaders = []string{"ID", "LEVEL", "NAME", "NODES", "CREATED"}

func solutionRow(s *SolutionResponse) []string {
	return []string{s.ID, s.LevelID, s.Name, strconv.Itoa(len(s.Graph.Nodes)), s.CreatedAt}
}
