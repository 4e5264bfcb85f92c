package models

// StudentDocument is an uploaded file attached to a student.
type StudentDocument struct {
	ID           int64  `json:"id"`
	StudentID    int64  `json:"student_id"`
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	UploadedAt   string `json:"uploaded_at,omitempty"`
	URL          string `json:"url,omitempty"`
}
