package resumes

import "time"

// Resume is a stored upload. FilePath is the object store key.
type Resume struct {
	ID         int64     `json:"resume_id"`
	UserID     int64     `json:"user_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"-"`
	RawText    string    `json:"raw_text"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Summary struct {
	ID         int64     `json:"resume_id"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Details struct {
	Resume
	Skills []string `json:"skills"`
}

// UploadResult is returned once the resume row is committed. SkillsAttached
// counts links made by the best-effort skill phase.
type UploadResult struct {
	ResumeID       int64  `json:"resume_id"`
	FileName       string `json:"file_name"`
	SkillsAttached int    `json:"-"`
}
