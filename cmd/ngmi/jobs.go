package main

import (
	"github.com/spf13/cobra"
)

var (
	jobTitle       string
	jobCompany     string
	jobDescription string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		items, err := app.JobsService.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), items)
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		job, err := app.JobsService.Add(cmd.Context(), jobTitle, jobCompany, jobDescription)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), job)
	},
}

func init() {
	jobsAddCmd.Flags().StringVar(&jobTitle, "title", "", "job title")
	jobsAddCmd.Flags().StringVar(&jobCompany, "company", "", "company name")
	jobsAddCmd.Flags().StringVar(&jobDescription, "description", "", "job description text")
	_ = jobsAddCmd.MarkFlagRequired("title")
	_ = jobsAddCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd)
}
