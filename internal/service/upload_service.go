package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/media/sniffer"
	"computing-marketplace/api/internal/media/svg"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/worker/queue"
)

const MaxFilesPerUpload = 10

type ObjectWriter interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (int64, error)
	Remove(ctx context.Context, bucket, key string) error
	OriginalsBucket() string
	PublicURL(bucket, key string) string
}

type ImageStore interface {
	Create(ctx context.Context, image models.Image) error
}

type UploadResult struct {
	Image models.Image `json:"image"`
	URL   string       `json:"url"`
}

type UploadService struct {
	images        ImageStore
	objects       ObjectWriter
	tasks         TaskEnqueuer
	maxBytes      int64
	signingSecret string
	log           zerolog.Logger
	now           func() time.Time
}

func NewUploadService(images ImageStore, objects ObjectWriter, tasks TaskEnqueuer, maxBytes int64, signingSecret string, log zerolog.Logger) *UploadService {
	return &UploadService{
		images:        images,
		objects:       objects,
		tasks:         tasks,
		maxBytes:      maxBytes,
		signingSecret: signingSecret,
		log:           log,
		now:           time.Now,
	}
}

func (s *UploadService) Upload(ctx context.Context, uploaderID string, file *multipart.FileHeader) (UploadResult, error) {
	if file == nil {
		return UploadResult{}, apperr.Validation("No file uploaded", map[string]string{"file": "is required"})
	}
	if file.Size > s.maxBytes {
		return UploadResult{}, s.tooLarge(file.Filename)
	}

	f, err := file.Open()
	if err != nil {
		return UploadResult{}, apperr.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return UploadResult{}, apperr.Internal(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > s.maxBytes {
		return UploadResult{}, s.tooLarge(file.Filename)
	}
	if len(data) == 0 {
		return UploadResult{}, apperr.Validation("Empty file", map[string]string{"file": file.Filename + " is empty"})
	}

	return s.store(ctx, uploaderID, file.Filename, http.Header(file.Header), data)
}

func (s *UploadService) UploadMany(ctx context.Context, uploaderID string, files []*multipart.FileHeader) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("No files uploaded", map[string]string{"files": "is required"})
	}
	if len(files) > MaxFilesPerUpload {
		return nil, apperr.Validation("Too many files", map[string]string{"files": fmt.Sprintf("at most %d files per request", MaxFilesPerUpload)})
	}

	results := make([]UploadResult, 0, len(files))
	for _, file := range files {
		res, err := s.Upload(ctx, uploaderID, file)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *UploadService) tooLarge(filename string) error {
	return apperr.Validation("File too large", map[string]string{
		"file": fmt.Sprintf("%s exceeds %d bytes", filename, s.maxBytes),
	})
}

func (s *UploadService) store(ctx context.Context, uploaderID, filename string, header http.Header, data []byte) (UploadResult, error) {
	detected, err := sniffer.DetectHead(head(data))
	if err != nil {
		return UploadResult{}, apperr.Validation("Unsupported file type", map[string]string{
			"file": filename + " is not a JPEG, PNG, GIF, WebP or SVG image",
		})
	}

	declared := sniffer.DeclaredType(header)
	if declared != "" && declared != "application/octet-stream" && declared != detected.MIME {
		return UploadResult{}, apperr.Validation("Content type mismatch", map[string]string{
			"file": fmt.Sprintf("declared %s but content is %s", declared, detected.MIME),
		})
	}

	if detected.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return UploadResult{}, apperr.Validation("Invalid SVG", map[string]string{"file": err.Error()})
		}
		data = clean
	}

	imageID := ids.New()
	bucket := s.objects.OriginalsBucket()
	objectKey := path.Join(s.now().UTC().Format("2006/01/02"), imageID+"."+detected.Extension())

	size, err := s.objects.Put(ctx, bucket, objectKey, data, detected.MIME)
	if err != nil {
		return UploadResult{}, apperr.Unavailable("Object storage unavailable", err)
	}

	sum := sha256.Sum256(data)
	status := models.ImageStatusProcessing
	if !detected.Raster() {
		status = models.ImageStatusReady
	}
	image := models.Image{
		ID:          imageID,
		UploadedBy:  uploaderID,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Format:      string(detected.Type),
		ContentType: detected.MIME,
		SizeBytes:   size,
		Checksum:    hex.EncodeToString(sum[:]),
		Signature:   security.ObjectSignature(s.signingSecret, imageID, objectKey),
		Status:      status,
	}
	now := s.now().UTC()
	image.CreatedAt = now
	image.UpdatedAt = now

	if err := s.images.Create(ctx, image); err != nil {
		if rmErr := s.objects.Remove(ctx, bucket, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("orphaned upload not removed")
		}
		return UploadResult{}, apperr.Internal(fmt.Errorf("save image metadata: %w", err))
	}

	if detected.Raster() {
		s.enqueueThumbnail(ctx, image)
	}

	return UploadResult{Image: image, URL: s.objects.PublicURL(bucket, objectKey)}, nil
}

func (s *UploadService) enqueueThumbnail(ctx context.Context, image models.Image) {
	if s.tasks == nil {
		return
	}
	task, err := queue.NewTask(queue.TaskThumbnail, queue.ThumbnailPayload{
		ImageID:   image.ID,
		Bucket:    image.Bucket,
		ObjectKey: image.ObjectKey,
		Format:    image.Format,
		Signature: image.Signature,
	})
	if err == nil {
		_, err = s.tasks.Enqueue(ctx, task)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("image_id", image.ID).Msg("enqueue thumbnail failed")
	}
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
