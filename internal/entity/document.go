package entity

// DocumentCategory is scoped to one employee and refetched on every selection.
type DocumentCategory struct {
	Category    string `json:"category"`
	DisplayName string `json:"display_name"`
}

type DocumentRecord struct {
	ID         string `json:"_id"`
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	FileName   string `json:"file_name"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
}

type DocumentUsersResponse struct {
	Users []EmployeeRecord `json:"users"`
}

type CategoriesResponse struct {
	UserID     string             `json:"user_id"`
	UserName   string             `json:"user_name"`
	Categories []DocumentCategory `json:"categories"`
}

type DocumentsResponse struct {
	UserID    string           `json:"user_id"`
	UserName  string           `json:"user_name"`
	Category  string           `json:"category"`
	Documents []DocumentRecord `json:"documents"`
}

type UploadResponse struct {
	Message  string         `json:"message"`
	Document DocumentRecord `json:"document"`
}
