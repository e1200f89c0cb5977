package queue

import (
	"encoding/json"
	"fmt"
)

type TaskType string

const (
	TaskThumbnail           TaskType = "thumbnail"
	TaskInquiryNotification TaskType = "inquiry_notification"
	TaskCleanup             TaskType = "cleanup"
)

// Task is one stream entry: a type field and a JSON payload field.
type Task struct {
	ID      string
	Type    TaskType
	Payload json.RawMessage
}

type ThumbnailPayload struct {
	ImageID   string `json:"imageId"`
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"objectKey"`
	Format    string `json:"format"`
	Signature string `json:"signature"`
}

type InquiryNotificationPayload struct {
	InquiryID string `json:"inquiryId"`
}

type CleanupPayload struct {
	Scope string `json:"scope,omitempty"`
}

func NewTask(typ TaskType, payload any) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Task{Type: typ, Payload: raw}, nil
}

func (t Task) Decode(out any) error {
	if len(t.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

func (t Task) values() map[string]any {
	return map[string]any{
		"type":    string(t.Type),
		"payload": string(t.Payload),
	}
}

func taskFromValues(id string, values map[string]any) (Task, error) {
	typ, _ := values["type"].(string)
	if typ == "" {
		return Task{}, fmt.Errorf("message %s has no type", id)
	}
	payload, _ := values["payload"].(string)
	return Task{ID: id, Type: TaskType(typ), Payload: json.RawMessage(payload)}, nil
}
