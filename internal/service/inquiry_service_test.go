package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/worker/queue"
)

type memoryInquiries struct {
	items map[string]models.Inquiry
}

func (m *memoryInquiries) Create(_ context.Context, in models.Inquiry) (models.Inquiry, error) {
	m.items[in.ID] = in
	return in, nil
}

func (m *memoryInquiries) GetByID(_ context.Context, id string) (models.Inquiry, error) {
	in, ok := m.items[id]
	if !ok {
		return models.Inquiry{}, repository.ErrNotFound
	}
	return in, nil
}

func (m *memoryInquiries) List(context.Context, models.InquiryFilter) ([]models.Inquiry, int64, error) {
	out := []models.Inquiry{}
	for _, in := range m.items {
		out = append(out, in)
	}
	return out, int64(len(out)), nil
}

func (m *memoryInquiries) Patch(_ context.Context, id string, patch models.InquiryPatch) (models.Inquiry, error) {
	in, ok := m.items[id]
	if !ok {
		return models.Inquiry{}, repository.ErrNotFound
	}
	if patch.Status != nil {
		in.Status = *patch.Status
	}
	if patch.Priority != nil {
		in.Priority = *patch.Priority
	}
	if patch.Notes != nil {
		in.Notes = patch.Notes
	}
	m.items[id] = in
	return in, nil
}

func (m *memoryInquiries) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type productsByID map[string]models.Product

func (p productsByID) GetByID(_ context.Context, id string) (models.Product, error) {
	product, ok := p[id]
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func newInquiryFixture() (*InquiryService, *memoryInquiries, *recordingQueue, *memoryActivity) {
	store := &memoryInquiries{items: map[string]models.Inquiry{}}
	tasks := &recordingQueue{}
	activity := &memoryActivity{}
	products := productsByID{"gpu-a100": {ID: "gpu-a100", Name: "A100 Cluster"}}
	svc := NewInquiryService(store, products, tasks, NewActivityRecorder(activity, zerolog.Nop()), zerolog.Nop())
	return svc, store, tasks, activity
}

func TestSubmitInquiry(t *testing.T) {
	svc, _, tasks, activity := newInquiryFixture()

	in, err := svc.Submit(context.Background(), SubmitInquiryInput{
		ProductID: strPtr("gpu-a100"),
		FullName:  " Jane Doe ",
		Email:     "Jane@Corp.com",
		Message:   "Need 8 nodes for training.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryPending, in.Status)
	assert.Equal(t, models.PriorityMedium, in.Priority)
	assert.Equal(t, "jane@corp.com", in.Email)
	assert.Equal(t, "Jane Doe", in.FullName)
	assert.Equal(t, "website", in.Source)

	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, queue.TaskInquiryNotification, tasks.tasks[0].Type)
	var payload queue.InquiryNotificationPayload
	require.NoError(t, tasks.tasks[0].Decode(&payload))
	assert.Equal(t, in.ID, payload.InquiryID)

	assert.Equal(t, []string{"inquiry.submitted"}, activity.actions())
}

func TestSubmitInquiryUnknownProduct(t *testing.T) {
	svc, store, tasks, _ := newInquiryFixture()

	_, err := svc.Submit(context.Background(), SubmitInquiryInput{
		ProductID: strPtr("nope"),
		FullName:  "Jane",
		Email:     "jane@corp.com",
		Message:   "hello there",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, store.items)
	assert.Empty(t, tasks.tasks)
}

func TestSubmitInquirySurvivesQueueOutage(t *testing.T) {
	svc, store, tasks, _ := newInquiryFixture()
	tasks.err = errors.New("redis down")

	_, err := svc.Submit(context.Background(), SubmitInquiryInput{FullName: "Jane", Email: "jane@corp.com", Message: "hello there"})
	require.NoError(t, err)
	assert.Len(t, store.items, 1)
}

func TestUpdateInquiryAnyTransition(t *testing.T) {
	svc, _, _, _ := newInquiryFixture()
	ctx := context.Background()
	in, err := svc.Submit(ctx, SubmitInquiryInput{FullName: "Jane", Email: "jane@corp.com", Message: "hello there"})
	require.NoError(t, err)

	closed := models.InquiryClosed
	updated, err := svc.Update(ctx, "sales-1", in.ID, models.InquiryPatch{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryClosed, updated.Status)

	pending := models.InquiryPending
	updated, err = svc.Update(ctx, "sales-1", in.ID, models.InquiryPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryPending, updated.Status)

	bogus := models.InquiryStatus("LOST")
	_, err = svc.Update(ctx, "sales-1", in.ID, models.InquiryPatch{Status: &bogus})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Update(ctx, "sales-1", "missing", models.InquiryPatch{Status: &pending})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, svc.Delete(ctx, "admin", in.ID))
	_, err = svc.Get(ctx, in.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
