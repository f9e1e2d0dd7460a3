package dto

type UploadURLRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type UploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
