package main

import (
	"github.com/spf13/cobra"
)

var (
	userID   int64
	jobID    int64
	resumeID int64
	filePath string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a PDF resume from disk for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res, err := app.ResumesService.UploadFile(cmd.Context(), userID, filePath)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"resume_id":       res.ResumeID,
			"file_name":       res.FileName,
			"skills_attached": res.SkillsAttached,
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply to a job with a resume and print the NGMI verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res, err := app.ApplicationsService.Apply(cmd.Context(), userID, jobID, resumeID)
		if err != nil {
			return err
		}
		out := map[string]any{
			"application_id": res.ApplicationID,
			"created":        res.Created,
			"ngmi_score":     nil,
			"ngmi_comment":   nil,
		}
		if res.Score != nil {
			out["ngmi_score"] = res.Score.Score
			out["ngmi_comment"] = res.Score.Comment
			out["feedback"] = res.Score.Feedback
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	uploadCmd.Flags().Int64Var(&userID, "user", 0, "owning user id")
	uploadCmd.Flags().StringVar(&filePath, "file", "", "path to the PDF resume")
	_ = uploadCmd.MarkFlagRequired("user")
	_ = uploadCmd.MarkFlagRequired("file")

	applyCmd.Flags().Int64Var(&userID, "user", 0, "applying user id")
	applyCmd.Flags().Int64Var(&jobID, "job", 0, "job posting id")
	applyCmd.Flags().Int64Var(&resumeID, "resume", 0, "resume id")
	_ = applyCmd.MarkFlagRequired("user")
	_ = applyCmd.MarkFlagRequired("job")
	_ = applyCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(uploadCmd, applyCmd)
}
