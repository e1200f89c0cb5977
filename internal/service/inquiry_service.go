package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/worker/queue"
)

type InquiryStore interface {
	Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error)
	GetByID(ctx context.Context, id string) (models.Inquiry, error)
	List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, int64, error)
	Patch(ctx context.Context, id string, patch models.InquiryPatch) (models.Inquiry, error)
	Delete(ctx context.Context, id string) error
}

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (models.Product, error)
}

type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
}

type InquiryService struct {
	inquiries InquiryStore
	products  ProductLookup
	tasks     TaskEnqueuer
	activity  *ActivityRecorder
	log       zerolog.Logger
}

func NewInquiryService(inquiries InquiryStore, products ProductLookup, tasks TaskEnqueuer, activity *ActivityRecorder, log zerolog.Logger) *InquiryService {
	return &InquiryService{
		inquiries: inquiries,
		products:  products,
		tasks:     tasks,
		activity:  activity,
		log:       log,
	}
}

type SubmitInquiryInput struct {
	ProductID   *string
	FullName    string
	Email       string
	Phone       *string
	CompanyName *string
	Region      *string
	Budget      *string
	Message     string
	Source      string
}

// Submit captures a public lead. It always starts PENDING at MEDIUM priority and
// queues a sales notification on a best-effort basis.
func (s *InquiryService) Submit(ctx context.Context, input SubmitInquiryInput) (models.Inquiry, error) {
	if input.ProductID != nil && *input.ProductID != "" {
		if _, err := s.products.GetByID(ctx, *input.ProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.Inquiry{}, apperr.Validation("Invalid inquiry", map[string]string{"productId": "unknown product"})
			}
			return models.Inquiry{}, apperr.Internal(err)
		}
	} else {
		input.ProductID = nil
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "website"
	}

	created, err := s.inquiries.Create(ctx, models.Inquiry{
		ID:          ids.New(),
		ProductID:   input.ProductID,
		FullName:    strings.TrimSpace(input.FullName),
		Email:       normalizeEmail(input.Email),
		Phone:       input.Phone,
		CompanyName: input.CompanyName,
		Region:      input.Region,
		Budget:      input.Budget,
		Message:     strings.TrimSpace(input.Message),
		Source:      source,
		Status:      models.InquiryPending,
		Priority:    models.PriorityMedium,
	})
	if err != nil {
		return models.Inquiry{}, storeError(err, "Inquiry")
	}

	s.notify(ctx, created.ID)
	s.activity.Record(ctx, nil, "inquiry.submitted", "inquiry", created.ID, map[string]string{"email": created.Email})
	return created, nil
}

func (s *InquiryService) notify(ctx context.Context, inquiryID string) {
	if s.tasks == nil {
		return
	}
	task, err := queue.NewTask(queue.TaskInquiryNotification, queue.InquiryNotificationPayload{InquiryID: inquiryID})
	if err == nil {
		_, err = s.tasks.Enqueue(ctx, task)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("inquiry_id", inquiryID).Msg("enqueue inquiry notification failed")
	}
}

func (s *InquiryService) List(ctx context.Context, f models.InquiryFilter) (models.PageResult[models.Inquiry], error) {
	fields := map[string]string{}
	if f.Status != "" && !f.Status.Valid() {
		fields["status"] = "unknown inquiry status"
	}
	if f.Priority != "" && !f.Priority.Valid() {
		fields["priority"] = "unknown priority"
	}
	if len(fields) > 0 {
		return models.PageResult[models.Inquiry]{}, apperr.Validation("Invalid filter", fields)
	}

	items, total, err := s.inquiries.List(ctx, f)
	if err != nil {
		return models.PageResult[models.Inquiry]{}, apperr.Internal(err)
	}
	return models.NewPageResult(items, total, f.Page), nil
}

func (s *InquiryService) Get(ctx context.Context, id string) (models.Inquiry, error) {
	in, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return models.Inquiry{}, storeError(err, "Inquiry")
	}
	return in, nil
}

// Update applies a triage patch. Any status may be set from any other status.
func (s *InquiryService) Update(ctx context.Context, actorID, id string, patch models.InquiryPatch) (models.Inquiry, error) {
	fields := map[string]string{}
	if patch.Status != nil && !patch.Status.Valid() {
		fields["status"] = "unknown inquiry status"
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		fields["priority"] = "unknown priority"
	}
	if len(fields) > 0 {
		return models.Inquiry{}, apperr.Validation("Invalid inquiry update", fields)
	}

	before, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return models.Inquiry{}, storeError(err, "Inquiry")
	}
	updated, err := s.inquiries.Patch(ctx, id, patch)
	if err != nil {
		return models.Inquiry{}, storeError(err, "Inquiry")
	}

	details := map[string]string{}
	if before.Status != updated.Status {
		details["from"] = string(before.Status)
		details["to"] = string(updated.Status)
	}
	s.activity.Record(ctx, &actorID, "inquiry.updated", "inquiry", id, details)
	return updated, nil
}

func (s *InquiryService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.inquiries.Delete(ctx, id); err != nil {
		return storeError(err, "Inquiry")
	}
	s.activity.Record(ctx, &actorID, "inquiry.deleted", "inquiry", id, nil)
	return nil
}
