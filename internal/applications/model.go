package applications

import "time"

// StatusSubmitted is the status every new application starts in.
const StatusSubmitted = "submitted"

type Application struct {
	ID        int64     `json:"application_id"`
	UserID    int64     `json:"user_id"`
	JobID     int64     `json:"job_id"`
	ResumeID  int64     `json:"resume_id"`
	AppliedAt time.Time `json:"applied_at"`
	Status    string    `json:"status"`
}

// Score is a persisted oracle verdict for one application.
type Score struct {
	ApplicationID int64     `json:"application_id"`
	Score         float64   `json:"ngmi_score"`
	Comment       string    `json:"ngmi_comment"`
	Feedback      string    `json:"feedback"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ApplyResult is the outcome of Apply. Created is false when the user had
// already applied to the job. Score is nil when no verdict is stored.
type ApplyResult struct {
	ApplicationID int64
	Created       bool
	Score         *Score
}

// Summary is one row of a user's application list. Score fields are nil
// until the application has been scored.
type Summary struct {
	ID          int64     `json:"application_id"`
	AppliedAt   time.Time `json:"applied_at"`
	Status      string    `json:"status"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	NGMIScore   *float64  `json:"ngmi_score"`
	NGMIComment *string   `json:"ngmi_comment"`
}

type Detail struct {
	ApplicationID  int64     `json:"application_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	JobDescription string    `json:"job_description"`
	ResumeFileName string    `json:"resume_file_name"`
	NGMIScore      float64   `json:"ngmi_score"`
	NGMIComment    string    `json:"ngmi_comment"`
	Feedback       string    `json:"feedback"`
	GeneratedAt    time.Time `json:"generated_at"`
}
