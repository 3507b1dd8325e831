package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/internal/dto"
)

func newFeasibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feasibility",
		Short: "Check whether the pending topics fit before the exam",
		Example: `  plancheck feasibility -f plan.json
  cat plan.json | plancheck feasibility -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			svc, _, err := newPlanner(cmd)
			if err != nil {
				return err
			}

			resp, err := svc.CheckFeasibility(cmd.Context(), dto.FeasibilityRequest{PlanInput: req.PlanInput})
			if err != nil {
				return err
			}
			if format == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			res := resp.Result
			fmt.Fprintf(out, "Window:      %s .. %s (%d min sessions)\n", resp.StartDate, resp.ExamDate, resp.SessionMinutes)
			fmt.Fprintf(out, "Status:      %s\n", res.Status)
			fmt.Fprintf(out, "Available:   %d slots over %d days\n", res.TotalAvailableSlots, res.Capacity.AvailableDays)
			fmt.Fprintf(out, "Needed:      %d (new %d, reviews %d, essays %d)\n",
				res.SlotsNeeded, res.Demand.NewTopics, res.Demand.Reviews, res.Demand.Essays)
			if res.UtilizationRate != nil {
				fmt.Fprintf(out, "Utilization: %.1f%%\n", *res.UtilizationRate)
			}
			if res.Deficit > 0 {
				fmt.Fprintf(out, "Deficit:     %d\n", res.Deficit)
			}
			for _, s := range res.Suggestions {
				fmt.Fprintf(out, "  - [%s] %s (%s)\n", s.Type, s.Description, s.Impact)
			}
			return nil
		},
	}
}
