package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/internal/service"
	"github.com/noah-isme/cronograma-api/pkg/export"
	"github.com/noah-isme/cronograma-api/pkg/storage"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build the calendar preview of a plan request",
		Long: `preview checks feasibility, distributes the pending topics and places them
on the calendar. --final-stretch keeps only the highest-priority topics that
fit when the window is too short. With --export csv|pdf the calendar is rendered the same way
the preview export endpoint does and written under --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				req.Seed = &seed
			}
			if finalStretch, _ := cmd.Flags().GetBool("final-stretch"); finalStretch {
				req.FinalStretch = true
			}
			svc, _, err := newPlanner(cmd)
			if err != nil {
				return err
			}

			resp, err := svc.Preview(cmd.Context(), req)
			if err != nil {
				if resp != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "status %s: %d slots available, %d needed\n",
						resp.Feasibility.Result.Status, resp.Feasibility.Result.TotalAvailableSlots, resp.Feasibility.Result.SlotsNeeded)
				}
				return err
			}

			exportFormat, _ := cmd.Flags().GetString("export")
			if exportFormat != "" {
				exporter := service.NewExportService(nil, export.NewCSVExporter(), export.NewPDFExporter())
				file, err := exporter.RenderPreview(resp, exportFormat)
				if err != nil {
					return err
				}
				dir, _ := cmd.Flags().GetString("dir")
				name, _ := cmd.Flags().GetString("name")
				if name == "" {
					name = file.Filename
				}
				store, err := storage.NewLocalStorage(dir)
				if err != nil {
					return err
				}
				path, err := store.Save(name, file.Body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(file.Body))
				return nil
			}

			if format == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seed %d, quality %d (%s)\n", resp.Distribution.Seed, resp.Distribution.Quality.Score, resp.Distribution.Quality.Level)
			if cut := resp.FinalStretch; cut != nil && cut.Applied {
				fmt.Fprintf(out, "Final stretch: kept %d, left out %d topics\n", len(cut.Kept), len(cut.Excluded))
			}
			for _, session := range resp.Calendar.Sessions {
				label := string(session.Kind)
				if session.Topic != nil {
					label = session.Topic.SubjectName + " / " + session.Topic.ID
				}
				fmt.Fprintf(out, "%s #%d  %s\n", session.Date.Format("2006-01-02 Mon"), session.Slot, label)
			}
			if n := len(resp.Calendar.Unscheduled); n > 0 {
				fmt.Fprintf(out, "%d topics left unscheduled\n", n)
			}
			return nil
		},
	}
	cmd.Flags().Int64("seed", 0, "Distribution seed")
	cmd.Flags().Bool("final-stretch", false, "Drop the lowest-priority topics when the plan does not fit")
	cmd.Flags().String("export", "", "Render the calendar as csv or pdf instead of printing it")
	cmd.Flags().String("dir", storage.DefaultExportDir, "Directory exports are written to")
	cmd.Flags().String("name", "", "Export file name (defaults to the generated name)")
	return cmd
}
