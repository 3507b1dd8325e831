package cli

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	"github.com/noah-isme/cronograma-api/pkg/jobs"
)

// SweepReport aggregates distribution quality over consecutive seeds.
type SweepReport struct {
	FirstSeed    int64          `json:"firstSeed"`
	Runs         int            `json:"runs"`
	Topics       int            `json:"topics"`
	MinScore     int            `json:"minScore"`
	MaxScore     int            `json:"maxScore"`
	AverageScore float64        `json:"averageScore"`
	WorstSeed    int64          `json:"worstSeed"`
	Levels       map[string]int `json:"levels"`
	MaxRun       int            `json:"maxRun"`
	RunLimit     int            `json:"runLimit"`
	OverLimit    int            `json:"runsOverLimit"`
	RunBreaks    int            `json:"runBreaks"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Distribute the pending topics over many seeds and report quality",
		Long: `sweep runs the weighted distribution once per seed, starting at --seed
(or a clock-derived seed when omitted), and aggregates quality scores and
same-subject run lengths. Use it to tune --shuffle-strength, --swap-radius
and --max-run before changing the service config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			runs, _ := cmd.Flags().GetInt("runs")
			if runs <= 0 {
				return fmt.Errorf("--runs must be positive")
			}
			first, _ := cmd.Flags().GetInt64("seed")
			if !cmd.Flags().Changed("seed") {
				first = int64(scheduler.NewRunSource().Float64() * math.MaxInt32)
			}

			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			svc, opts, err := newPlanner(cmd)
			if err != nil {
				return err
			}

			report := SweepReport{FirstSeed: first, Runs: runs, MinScore: math.MaxInt, Levels: map[string]int{}, RunLimit: opts.MaxRun}
			if report.RunLimit == 0 {
				report.RunLimit = scheduler.DefaultMaxRun
			}
			workers, _ := cmd.Flags().GetInt("workers")
			results := make([]*dto.DistributionResponse, runs)
			pool := jobs.NewPool("sweep", jobs.PoolConfig{Workers: workers})
			err = pool.Run(cmd.Context(), runs, func(ctx context.Context, i int) error {
				seed := first + int64(i)
				resp, err := svc.Distribute(ctx, dto.DistributionRequest{PendingTopics: req.PendingTopics, Seed: &seed})
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
				results[i] = resp
				return nil
			})
			if err != nil {
				return err
			}

			total := 0
			for i, resp := range results {
				seed := first + int64(i)
				report.Topics = len(resp.Sequence)
				score := resp.Quality.Score
				total += score
				if score < report.MinScore {
					report.MinScore = score
					report.WorstSeed = seed
				}
				if score > report.MaxScore {
					report.MaxScore = score
				}
				report.Levels[resp.Quality.Level]++
				run := resp.Analysis.MaxConsecutiveSubject
				if run > report.MaxRun {
					report.MaxRun = run
				}
				if report.RunLimit > 0 && run > report.RunLimit {
					report.OverLimit++
				}
				report.RunBreaks += resp.Stats.RunBreaks
			}
			report.AverageScore = math.Round(float64(total)/float64(runs)*10) / 10

			if format == outputJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeds:   %d..%d (%d topics)\n", first, first+int64(runs)-1, report.Topics)
			fmt.Fprintf(out, "Score:   avg %.1f, min %d (seed %d), max %d\n", report.AverageScore, report.MinScore, report.WorstSeed, report.MaxScore)
			fmt.Fprintf(out, "Max run: %d (limit %d, %d runs over)\n", report.MaxRun, report.RunLimit, report.OverLimit)
			fmt.Fprintf(out, "Breaks:  %d\n", report.RunBreaks)
			levels := make([]string, 0, len(report.Levels))
			for level := range report.Levels {
				levels = append(levels, level)
			}
			sort.Strings(levels)
			for _, level := range levels {
				fmt.Fprintf(out, "  %-18s %d\n", level, report.Levels[level])
			}
			return nil
		},
	}
	cmd.Flags().Int("runs", 100, "Number of seeds to try")
	cmd.Flags().Int64("seed", 0, "First seed of the sweep")
	cmd.Flags().Int("workers", 4, "Seeds distributed in parallel")
	return cmd
}
