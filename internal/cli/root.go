package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	"github.com/noah-isme/cronograma-api/internal/service"
	"github.com/noah-isme/cronograma-api/pkg/config"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// Execute runs the plancheck command tree.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the plancheck command tree. Every call returns fresh flag
// state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "plancheck",
		Short:         "Offline feasibility and distribution checks for study plans",
		Long:          "plancheck reads a plan request (the /planner/preview body) and runs the planner engine locally.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringP("input", "f", "-", "Plan request JSON file, - for stdin")
	root.PersistentFlags().StringP("output", "o", outputText, "Output format: text or json")
	root.PersistentFlags().Bool("verbose", false, "Log planner activity to stderr")
	root.PersistentFlags().Float64("shuffle-strength", 0, "Swap probability of the local shuffle (0 uses config)")
	root.PersistentFlags().Int("swap-radius", 0, "How far back a swap may reach (0 uses config)")
	root.PersistentFlags().Int("max-weight", 0, "Subject weight cap (0 uses config)")
	root.PersistentFlags().Int("max-run", 0, "Longest allowed same-subject run, -1 disables (0 uses config)")

	root.AddCommand(newFeasibilityCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newPreviewCmd())
	return root
}

func readRequest(cmd *cobra.Command) (dto.PreviewRequest, error) {
	var req dto.PreviewRequest
	path, _ := cmd.Flags().GetString("input")

	var r io.Reader = cmd.InOrStdin()
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode plan request: %w", err)
	}
	return req, nil
}

func newPlanner(cmd *cobra.Command) (*service.PlannerService, scheduler.DistributionOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, scheduler.DistributionOptions{}, fmt.Errorf("load config: %w", err)
	}

	opts := scheduler.DistributionOptions{
		ShuffleStrength: cfg.Planner.ShuffleStrength,
		SwapRadius:      cfg.Planner.SwapRadius,
		MaxWeight:       cfg.Planner.MaxSubjectWeight,
		MaxRun:          cfg.Planner.MaxRun,
	}
	flags := cmd.Flags()
	if v, _ := flags.GetFloat64("shuffle-strength"); v > 0 {
		opts.ShuffleStrength = v
	}
	if v, _ := flags.GetInt("swap-radius"); v > 0 {
		opts.SwapRadius = v
	}
	if v, _ := flags.GetInt("max-weight"); v > 0 {
		opts.MaxWeight = v
	}
	if v, _ := flags.GetInt("max-run"); v != 0 {
		opts.MaxRun = v
	}

	logr := zap.NewNop()
	if verbose, _ := flags.GetBool("verbose"); verbose {
		if logr, err = zap.NewDevelopment(); err != nil {
			return nil, opts, err
		}
	}

	svc := service.NewPlannerService(nil, nil, nil, nil, nil, logr, service.PlannerConfig{
		DefaultSessionMinutes: cfg.Planner.DefaultSessionMinutes,
		Distribution:          opts,
		Location:              cfg.Planner.Location(),
	})
	return svc, opts, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case outputText, outputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}
