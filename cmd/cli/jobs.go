package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/accunode/accunode-go/internal/app"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

func init() {
	uploadCmd := &cobra.Command{
		Use:   "bulk-upload <file>",
		Short: "Upload a spreadsheet for asynchronous bulk scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := flagPredictionType(cmd)
			if err != nil {
				return err
			}
			access, _ := cmd.Flags().GetString("access")
			wait, _ := cmd.Flags().GetBool("wait")
			out, _ := cmd.Flags().GetString("output")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.JobStore.StartBulkUpload(cmd.Context(), typ, filepath.Base(args[0]),
				f, constants.OrganizationAccess(access))
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("Job %s accepted: %d rows", job.ID, job.TotalRows)
			if job.EstimatedMinutes > 0 {
				fmt.Printf(", estimated %.0f min", job.EstimatedMinutes)
			}
			fmt.Println()

			if !wait {
				return nil
			}
			if err := watchJob(cmd, a, job.ID); err != nil {
				return err
			}
			if out != "" {
				if err := a.JobStore.DownloadResults(job.ID, out); err != nil {
					return fmt.Errorf("%s", errors.Humanize(err))
				}
				fmt.Println("Results written to", out)
			}
			return nil
		},
	}
	uploadCmd.Flags().String("type", "annual", "Prediction type: annual or quarterly")
	uploadCmd.Flags().String("access", "", "Visibility: personal, organization, or system")
	uploadCmd.Flags().Bool("wait", false, "Block until the job finishes")
	uploadCmd.Flags().String("output", "", "With --wait, write results CSV to this path")

	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage bulk-scoring jobs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(a.JobStore.Jobs())
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.JobsAPI.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			a.JobStore.Track(snap)
			return watchJob(cmd, a, args[0])
		},
	}

	downloadCmd := &cobra.Command{
		Use:   "download <job-id> <path>",
		Short: "Export a finished job's results as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.JobsAPI.Details(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			a.JobStore.Track(snap)
			if err := a.JobStore.DownloadResults(args[0], args[1]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Results written to", args[1])
			return nil
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.JobStore.Cancel(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Cancelled", args[0])
			return nil
		},
	}

	jobsCmd.AddCommand(listCmd, watchCmd, downloadCmd, cancelCmd)
	rootCmd.AddCommand(uploadCmd, jobsCmd)
}

// watchJob prints progress lines until the tracked job reaches a terminal
// state. The store owns the poll cadence; this loop only reads snapshots.
func watchJob(cmd *cobra.Command, a *app.App, id string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	lastLine := ""
	for {
		job, ok := a.JobStore.Job(id)
		if !ok {
			return errors.NewValidationError("job_id", "job is no longer tracked")
		}
		line := fmt.Sprintf("%s: %.0f%% (%d/%d rows)", job.Status, job.Progress, job.ProcessedRows, job.TotalRows)
		if line != lastLine {
			fmt.Println(line)
			lastLine = line
		}
		if job.Terminal() {
			if job.Status == constants.JobStatusFailed {
				return fmt.Errorf("job failed: %s", job.Message)
			}
			return nil
		}
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}
	}
}
