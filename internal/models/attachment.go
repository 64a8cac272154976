package models

import "time"

// Attachment is the metadata record linking a stored file to an expense line.
// The stored object name is always "<line_id>_<original file name>", and at most
// one live attachment exists per line.
type Attachment struct {
	ID        int64     `json:"id"`
	LineID    string    `json:"line_id"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	MimeType  string    `json:"mime_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentFile carries the bytes of a pending upload held in the edit buffer.
type AttachmentFile struct {
	FileName string
	MimeType string
	Content  []byte
}
