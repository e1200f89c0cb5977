package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/worker/queue"
)

type memoryObjects struct {
	objects map[string][]byte
	removed []string
}

func (m *memoryObjects) Put(_ context.Context, bucket, key string, data []byte, _ string) (int64, error) {
	m.objects[bucket+"/"+key] = data
	return int64(len(data)), nil
}

func (m *memoryObjects) Remove(_ context.Context, bucket, key string) error {
	m.removed = append(m.removed, bucket+"/"+key)
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memoryObjects) OriginalsBucket() string { return "originals" }

func (m *memoryObjects) PublicURL(bucket, key string) string {
	return "https://cdn.example.com/" + bucket + "/" + key
}

type memoryImages struct {
	images []models.Image
	err    error
}

func (m *memoryImages) Create(_ context.Context, img models.Image) error {
	if m.err != nil {
		return m.err
	}
	m.images = append(m.images, img)
	return nil
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func fileHeaders(t *testing.T, files ...formFile) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUploadFixture(maxBytes int64) (*UploadService, *memoryObjects, *memoryImages, *recordingQueue) {
	objects := &memoryObjects{objects: map[string][]byte{}}
	images := &memoryImages{}
	tasks := &recordingQueue{}
	svc := NewUploadService(images, objects, tasks, maxBytes, "sign-secret", zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	return svc, objects, images, tasks
}

func TestUploadRasterImage(t *testing.T) {
	svc, objects, images, tasks := newUploadFixture(1 << 20)
	headers := fileHeaders(t, formFile{name: "rack.png", contentType: "image/png", data: pngBytes(t)})

	res, err := svc.Upload(context.Background(), "admin-1", headers[0])
	require.NoError(t, err)

	img := res.Image
	assert.True(t, strings.HasPrefix(img.ObjectKey, "2026/10/15/"))
	assert.True(t, strings.HasSuffix(img.ObjectKey, ".png"))
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, models.ImageStatusProcessing, img.Status)
	assert.Len(t, img.Checksum, 64)
	assert.True(t, security.VerifyObjectSignature("sign-secret", img.Signature, img.ID, img.ObjectKey))
	assert.Equal(t, "https://cdn.example.com/originals/"+img.ObjectKey, res.URL)
	assert.Contains(t, objects.objects, "originals/"+img.ObjectKey)
	require.Len(t, images.images, 1)

	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, queue.TaskThumbnail, tasks.tasks[0].Type)
	var payload queue.ThumbnailPayload
	require.NoError(t, tasks.tasks[0].Decode(&payload))
	assert.Equal(t, img.ID, payload.ImageID)
	assert.Equal(t, img.Signature, payload.Signature)
}

func TestUploadSanitizesSVG(t *testing.T) {
	svc, objects, _, tasks := newUploadFixture(1 << 20)
	svgDoc := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script><rect onclick="x()" width="1" height="1"/></svg>`)
	headers := fileHeaders(t, formFile{name: "logo.svg", contentType: "image/svg+xml", data: svgDoc})

	res, err := svc.Upload(context.Background(), "admin-1", headers[0])
	require.NoError(t, err)
	assert.Equal(t, models.ImageStatusReady, res.Image.Status)
	assert.Empty(t, tasks.tasks)

	stored := string(objects.objects["originals/"+res.Image.ObjectKey])
	assert.NotContains(t, stored, "script")
	assert.NotContains(t, stored, "onclick")
}

func TestUploadRejections(t *testing.T) {
	svc, objects, _, _ := newUploadFixture(64)
	ctx := context.Background()

	big := fileHeaders(t, formFile{name: "big.png", contentType: "image/png", data: append(pngBytes(t), make([]byte, 128)...)})
	_, err := svc.Upload(ctx, "admin-1", big[0])
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	text := fileHeaders(t, formFile{name: "notes.txt", contentType: "text/plain", data: []byte("just text")})
	_, err = svc.Upload(ctx, "admin-1", text[0])
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	svc, objects, _, _ = newUploadFixture(1 << 20)
	lying := fileHeaders(t, formFile{name: "fake.jpg", contentType: "image/jpeg", data: pngBytes(t)})
	_, err = svc.Upload(ctx, "admin-1", lying[0])
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, objects.objects)

	_, err = svc.Upload(ctx, "admin-1", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUploadRemovesObjectWhenMetadataFails(t *testing.T) {
	svc, objects, images, _ := newUploadFixture(1 << 20)
	images.err = errors.New("db down")
	headers := fileHeaders(t, formFile{name: "rack.png", contentType: "image/png", data: pngBytes(t)})

	_, err := svc.Upload(context.Background(), "admin-1", headers[0])
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
	assert.Empty(t, objects.objects)
	assert.Len(t, objects.removed, 1)
}

func TestUploadManyLimits(t *testing.T) {
	svc, _, images, _ := newUploadFixture(1 << 20)
	ctx := context.Background()

	_, err := svc.UploadMany(ctx, "admin-1", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	files := make([]formFile, MaxFilesPerUpload+1)
	for i := range files {
		files[i] = formFile{name: fmt.Sprintf("f%d.png", i), contentType: "image/png", data: pngBytes(t)}
	}
	_, err = svc.UploadMany(ctx, "admin-1", fileHeaders(t, files...))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, images.images)

	results, err := svc.UploadMany(ctx, "admin-1", fileHeaders(t, files[:3]...))
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
