package models

import "time"

type ImageStatus string

const (
	ImageStatusProcessing ImageStatus = "processing"
	ImageStatusReady      ImageStatus = "ready"
	ImageStatusFailed     ImageStatus = "failed"
)

type Image struct {
	ID          string      `json:"id"`
	UploadedBy  string      `json:"uploadedBy"`
	Bucket      string      `json:"bucket"`
	ObjectKey   string      `json:"objectKey"`
	VariantKey  *string     `json:"variantKey,omitempty"`
	Format      string      `json:"format"`
	ContentType string      `json:"contentType"`
	SizeBytes   int64       `json:"sizeBytes"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Checksum    string      `json:"checksum"`
	Signature   string      `json:"-"`
	Status      ImageStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
