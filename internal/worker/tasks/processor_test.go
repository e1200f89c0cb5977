package tasks

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/worker/queue"
)

const secret = "signing-secret"

type memoryObjects struct {
	data    map[string][]byte
	types   map[string]string
	removed []string
	getErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{data: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) Get(_ context.Context, bucket, key string, _ int64) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryObjects) Put(_ context.Context, bucket, key string, data []byte, contentType string) (int64, error) {
	m.data[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return int64(len(data)), nil
}

func (m *memoryObjects) Remove(_ context.Context, bucket, key string) error {
	m.removed = append(m.removed, bucket+"/"+key)
	delete(m.data, bucket+"/"+key)
	return nil
}

func (m *memoryObjects) VariantsBucket() string { return "variants" }

type processed struct {
	status     models.ImageStatus
	variantKey *string
	width      int
	height     int
}

type memoryImages struct {
	marked  map[string]processed
	failed  []models.Image
	deleted []string
	cutoff  time.Time
}

func newMemoryImages() *memoryImages {
	return &memoryImages{marked: map[string]processed{}}
}

func (m *memoryImages) MarkProcessed(_ context.Context, id string, status models.ImageStatus, variantKey *string, width, height int) error {
	if id == "gone" {
		return repository.ErrNotFound
	}
	m.marked[id] = processed{status: status, variantKey: variantKey, width: width, height: height}
	return nil
}

func (m *memoryImages) ListFailedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.Image, error) {
	m.cutoff = cutoff
	return m.failed, nil
}

func (m *memoryImages) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type memoryInquiries map[string]models.Inquiry

func (m memoryInquiries) GetByID(_ context.Context, id string) (models.Inquiry, error) {
	in, ok := m[id]
	if !ok {
		return models.Inquiry{}, repository.ErrNotFound
	}
	return in, nil
}

type pruner struct {
	cutoff time.Time
	err    error
}

func (p *pruner) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 3, p.err
}

type outbox struct {
	sent []*gomail.Message
	err  error
}

func (o *outbox) DialAndSend(m ...*gomail.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m...)
	return nil
}

type fixture struct {
	objects   *memoryObjects
	images    *memoryImages
	inquiries memoryInquiries
	activity  *pruner
	mail      *outbox
	proc      *Processor
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		objects:   newMemoryObjects(),
		images:    newMemoryImages(),
		inquiries: memoryInquiries{},
		activity:  &pruner{},
		mail:      &outbox{},
		now:       time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC),
	}
	f.proc = NewProcessor(f.objects, f.images, f.inquiries, f.activity, f.mail, Options{
		SigningSecret:     secret,
		ThumbnailWidth:    100,
		MaxObjectBytes:    1 << 20,
		ActivityRetention: 90 * 24 * time.Hour,
		MailFrom:          "no-reply@example.com",
		SalesInbox:        "sales@example.com",
	}, zerolog.Nop())
	f.proc.now = func() time.Time { return f.now }
	return f
}

func encodedImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if format == "jpeg" {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func thumbnailTask(t *testing.T, imageID, key, format, signature string) queue.Task {
	t.Helper()
	task, err := queue.NewTask(queue.TaskThumbnail, queue.ThumbnailPayload{
		ImageID:   imageID,
		Bucket:    "originals",
		ObjectKey: key,
		Format:    format,
		Signature: signature,
	})
	require.NoError(t, err)
	return task
}

func TestThumbnailDownscales(t *testing.T) {
	f := newFixture(t)
	key := "2026/10/15/img1.png"
	f.objects.data["originals/"+key] = encodedImage(t, "png", 400, 200)

	task := thumbnailTask(t, "img1", key, "png", security.ObjectSignature(secret, "img1", key))
	require.NoError(t, f.proc.Handle(context.Background(), task))

	got := f.images.marked["img1"]
	assert.Equal(t, models.ImageStatusReady, got.status)
	assert.Equal(t, 400, got.width)
	assert.Equal(t, 200, got.height)
	require.NotNil(t, got.variantKey)
	assert.Equal(t, "thumbs/2026/10/15/img1.png", *got.variantKey)

	thumb, _, err := image.DecodeConfig(bytes.NewReader(f.objects.data["variants/"+*got.variantKey]))
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Width)
	assert.Equal(t, 50, thumb.Height)
	assert.Equal(t, "image/png", f.objects.types["variants/"+*got.variantKey])
}

func TestThumbnailKeepsJPEGAndSmallSize(t *testing.T) {
	f := newFixture(t)
	key := "2026/10/15/img2.jpg"
	f.objects.data["originals/"+key] = encodedImage(t, "jpeg", 60, 40)

	task := thumbnailTask(t, "img2", key, "jpeg", security.ObjectSignature(secret, "img2", key))
	require.NoError(t, f.proc.Handle(context.Background(), task))

	got := f.images.marked["img2"]
	require.NotNil(t, got.variantKey)
	assert.Equal(t, "thumbs/2026/10/15/img2.jpg", *got.variantKey)
	assert.Equal(t, "image/jpeg", f.objects.types["variants/"+*got.variantKey])

	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.objects.data["variants/"+*got.variantKey]))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
}

func TestThumbnailRejectsTamperedPayload(t *testing.T) {
	f := newFixture(t)
	key := "2026/10/15/img3.png"
	f.objects.data["originals/"+key] = encodedImage(t, "png", 10, 10)

	task := thumbnailTask(t, "img3", key, "png", security.ObjectSignature(secret, "other", key))
	require.NoError(t, f.proc.Handle(context.Background(), task))
	assert.Empty(t, f.images.marked)
}

func TestThumbnailUndecodableMarksFailed(t *testing.T) {
	f := newFixture(t)
	key := "2026/10/15/img4.png"
	f.objects.data["originals/"+key] = []byte("\x89PNG\r\n\x1a\nnot really")

	task := thumbnailTask(t, "img4", key, "png", security.ObjectSignature(secret, "img4", key))
	require.NoError(t, f.proc.Handle(context.Background(), task))
	assert.Equal(t, models.ImageStatusFailed, f.images.marked["img4"].status)
}

func TestThumbnailStorageErrorRetries(t *testing.T) {
	f := newFixture(t)
	f.objects.getErr = errors.New("connection reset")
	key := "2026/10/15/img5.png"

	task := thumbnailTask(t, "img5", key, "png", security.ObjectSignature(secret, "img5", key))
	assert.Error(t, f.proc.Handle(context.Background(), task))
}

func TestInquiryNotification(t *testing.T) {
	f := newFixture(t)
	product := "A100 cluster"
	f.inquiries["inq1"] = models.Inquiry{
		ID:          "inq1",
		FullName:    "Dana Lee",
		Email:       "dana@example.com",
		ProductName: &product,
		Message:     "Need 8 nodes",
		Priority:    models.PriorityHigh,
		Source:      "website",
	}

	task, err := queue.NewTask(queue.TaskInquiryNotification, queue.InquiryNotificationPayload{InquiryID: "inq1"})
	require.NoError(t, err)
	require.NoError(t, f.proc.Handle(context.Background(), task))

	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, []string{"sales@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"dana@example.com"}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"New inquiry from Dana Lee about A100 cluster"}, msg.GetHeader("Subject"))
}

func TestInquiryNotificationEdgeCases(t *testing.T) {
	f := newFixture(t)
	task, err := queue.NewTask(queue.TaskInquiryNotification, queue.InquiryNotificationPayload{InquiryID: "missing"})
	require.NoError(t, err)
	require.NoError(t, f.proc.Handle(context.Background(), task))
	assert.Empty(t, f.mail.sent)

	f.inquiries["inq2"] = models.Inquiry{ID: "inq2", FullName: "A", Email: "a@example.com"}
	f.mail.err = errors.New("smtp timeout")
	task, err = queue.NewTask(queue.TaskInquiryNotification, queue.InquiryNotificationPayload{InquiryID: "inq2"})
	require.NoError(t, err)
	assert.Error(t, f.proc.Handle(context.Background(), task))

	f.proc.mailer = nil
	require.NoError(t, f.proc.Handle(context.Background(), task))
}

func TestCleanup(t *testing.T) {
	f := newFixture(t)
	f.images.failed = []models.Image{{ID: "bad1", Bucket: "originals", ObjectKey: "k1.png"}}

	task, err := queue.NewTask(queue.TaskCleanup, queue.CleanupPayload{})
	require.NoError(t, err)
	require.NoError(t, f.proc.Handle(context.Background(), task))

	assert.Equal(t, f.now.Add(-90*24*time.Hour), f.activity.cutoff)
	assert.Equal(t, f.now.Add(-24*time.Hour), f.images.cutoff)
	assert.Equal(t, []string{"originals/k1.png"}, f.objects.removed)
	assert.Equal(t, []string{"bad1"}, f.images.deleted)
}

func TestCleanupScopes(t *testing.T) {
	f := newFixture(t)

	task, err := queue.NewTask(queue.TaskCleanup, queue.CleanupPayload{Scope: "activity"})
	require.NoError(t, err)
	require.NoError(t, f.proc.Handle(context.Background(), task))
	assert.False(t, f.activity.cutoff.IsZero())
	assert.True(t, f.images.cutoff.IsZero())

	f.activity.err = errors.New("db down")
	assert.Error(t, f.proc.Handle(context.Background(), task))
}

func TestUnknownTaskIsAcked(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.proc.Handle(context.Background(), queue.Task{Type: "nsfw"}))
	assert.NoError(t, f.proc.Handle(context.Background(), queue.Task{Type: queue.TaskThumbnail, Payload: []byte("{")}))
}
