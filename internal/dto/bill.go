package dto

// CreateBillRequest is the body of POST /bills. Amount accepts a JSON number
// or a numeric string; S3URL is sent by clients but not stored, since download
// URLs are re-signed on every read.
type CreateBillRequest struct {
	Title  string `json:"title"`
	Amount any    `json:"amount"`
	Date   string `json:"date"`
	S3Key  string `json:"s3Key"`
	S3URL  string `json:"s3Url,omitempty"`
}

type BillResponse struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	S3Key     string  `json:"s3Key"`
	CreatedAt string  `json:"createdAt"`
}

// BillWithURLResponse is a stored bill enriched with a freshly signed
// download URL. S3URL is empty when signing failed for this record.
type BillWithURLResponse struct {
	BillResponse
	S3URL string `json:"s3Url"`
}

type CreateBillResponse struct {
	Message string       `json:"message"`
	Bill    BillResponse `json:"bill"`
}

type ListBillsResponse struct {
	Bills []BillWithURLResponse `json:"bills"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
