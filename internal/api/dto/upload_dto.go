package dto

// UploadResponse describes a stored file.
type UploadResponse struct {
	Name      string `json:"name"`
	StoredAs  string `json:"stored_as"`
	PublicURL string `json:"url"`
	Size      int64  `json:"size"`
	Type      string `json:"type"`
}
