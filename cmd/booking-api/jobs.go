package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	tableFormat = "table"
	jsonFormat  = "json"
	yamlFormat  = "yaml"
)

var legalOutputTypes = []string{tableFormat, jsonFormat, yamlFormat}

type jobsOptions struct {
	Output   string
	Statuses []string
	Limit    int
}

func newJobsCmd() *cobra.Command {
	o := &jobsOptions{Output: tableFormat, Limit: 50}

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List the stored jobs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}

			cfg, flush, err := setup()
			if err != nil {
				return fmt.Errorf("reading configuration: %w", err)
			}
			defer flush()

			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			filter := store.NewJobQueryFilter()
			if len(o.Statuses) > 0 {
				statuses := make([]model.JobStatus, 0, len(o.Statuses))
				for _, st := range o.Statuses {
					statuses = append(statuses, model.JobStatus(st))
				}
				filter = filter.ByStatus(statuses...)
			}

			jobs, err := s.Job().List(cmd.Context(), filter, store.NewJobQueryOptions().WithSortOrder(store.SortByScheduledTime).WithLimit(o.Limit))
			if err != nil {
				return fmt.Errorf("listing jobs: %w", err)
			}

			return printJobs(os.Stdout, jobs, o.Output)
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	cmd.Flags().StringSliceVar(&o.Statuses, "status", nil, "Only list jobs in these statuses.")
	cmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Maximum number of jobs to list.")

	return cmd
}

func (o *jobsOptions) Validate() error {
	if !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	for _, st := range o.Statuses {
		if !model.JobStatus(st).IsValid() {
			return fmt.Errorf("unknown job status %q", st)
		}
	}
	if o.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

func printJobs(w io.Writer, jobs model.JobList, output string) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(jobs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling jobs: %w", err)
		}
		_, err = fmt.Fprintln(w, string(marshalled))
		return err
	case yamlFormat:
		marshalled, err := yaml.Marshal(jobs)
		if err != nil {
			return fmt.Errorf("marshalling jobs: %w", err)
		}
		_, err = fmt.Fprint(w, string(marshalled))
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Status", "Pair", "Scheduled", "Customer", "Translator", "Version")
	for _, j := range jobs {
		translator := "-"
		if j.TranslatorID != nil {
			translator = *j.TranslatorID
		}
		if err := table.Append(
			strconv.FormatInt(j.ID, 10),
			j.Status.String(),
			j.LanguagePair,
			j.ScheduledTime.Format(time.RFC3339),
			j.CustomerID,
			translator,
			strconv.FormatInt(j.Version, 10),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
