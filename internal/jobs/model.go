package jobs

type Job struct {
	ID          int64  `json:"job_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}
