// Package api contains API contract definitions for the order metrics service.
// Version v1 represents the current stable API version.
package api

import (
	"ordermetrics/pkg/contracts/domain"
)

// UploadRequest carries the CSV source URL of an ingestion
type UploadRequest struct {
	CSVURL string `json:"csv_url" form:"csv_url" validate:"required,url,csv_source"`
}

// FileIDRequest represents the path parameter shared by upload queries
type FileIDRequest struct {
	FileID string `json:"file_id" param:"file_id" validate:"required,file_id"`
}

// UploadResponse is returned after a successful ingestion
type UploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// UploadSucceededMessage is the message of a successful UploadResponse
const UploadSucceededMessage = "file processed successfully"

// NewUploadResponse builds the response for a stored summary
func NewUploadResponse(summary domain.Summary) UploadResponse {
	return UploadResponse{
		Message: UploadSucceededMessage,
		FileID:  summary.FileID,
	}
}
