// Package tasks executes the background work queued by the API: image
// thumbnails, sales notifications for new inquiries and periodic cleanup.
package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"gopkg.in/gomail.v2"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/worker/queue"
)

const (
	failedImageGrace = 24 * time.Hour
	cleanupBatch     = 100
)

type ObjectStore interface {
	Get(ctx context.Context, bucket, key string, limit int64) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (int64, error)
	Remove(ctx context.Context, bucket, key string) error
	VariantsBucket() string
}

type ImageStore interface {
	MarkProcessed(ctx context.Context, id string, status models.ImageStatus, variantKey *string, width, height int) error
	ListFailedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Image, error)
	Delete(ctx context.Context, id string) error
}

type InquiryLookup interface {
	GetByID(ctx context.Context, id string) (models.Inquiry, error)
}

type ActivityPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Mailer is satisfied by *gomail.Dialer.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Options struct {
	SigningSecret     string
	ThumbnailWidth    int
	MaxObjectBytes    int64
	ActivityRetention time.Duration
	MailFrom          string
	SalesInbox        string
}

type Processor struct {
	objects   ObjectStore
	images    ImageStore
	inquiries InquiryLookup
	activity  ActivityPruner
	mailer    Mailer
	opts      Options
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProcessor wires the task handlers. mailer may be nil, in which case
// inquiry notifications are logged and skipped.
func NewProcessor(objects ObjectStore, images ImageStore, inquiries InquiryLookup, activity ActivityPruner, mailer Mailer, opts Options, logger zerolog.Logger) *Processor {
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 480
	}
	return &Processor{
		objects:   objects,
		images:    images,
		inquiries: inquiries,
		activity:  activity,
		mailer:    mailer,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle dispatches one task. A returned error leaves the message pending for
// a later retry, so permanent failures are logged and swallowed here.
func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskThumbnail:
		var payload queue.ThumbnailPayload
		if err := task.Decode(&payload); err != nil {
			p.logger.Error().Err(err).Str("message_id", task.ID).Msg("thumbnail payload dropped")
			return nil
		}
		return p.handleThumbnail(ctx, payload)
	case queue.TaskInquiryNotification:
		var payload queue.InquiryNotificationPayload
		if err := task.Decode(&payload); err != nil {
			p.logger.Error().Err(err).Str("message_id", task.ID).Msg("notification payload dropped")
			return nil
		}
		return p.handleInquiryNotification(ctx, payload)
	case queue.TaskCleanup:
		var payload queue.CleanupPayload
		if err := task.Decode(&payload); err != nil {
			p.logger.Error().Err(err).Str("message_id", task.ID).Msg("cleanup payload dropped")
			return nil
		}
		return p.handleCleanup(ctx, payload)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleThumbnail(ctx context.Context, payload queue.ThumbnailPayload) error {
	logger := p.logger.With().Str("image_id", payload.ImageID).Logger()

	if !security.VerifyObjectSignature(p.opts.SigningSecret, payload.Signature, payload.ImageID, payload.ObjectKey) {
		logger.Warn().Str("object_key", payload.ObjectKey).Msg("thumbnail task signature mismatch")
		return nil
	}

	data, err := p.objects.Get(ctx, payload.Bucket, payload.ObjectKey, p.opts.MaxObjectBytes)
	if err != nil {
		return fmt.Errorf("fetch original: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn().Err(err).Msg("original not decodable")
		return p.markFailed(ctx, payload.ImageID)
	}

	bounds := src.Bounds()
	thumb, contentType, err := p.encodeThumbnail(src, payload.Format)
	if err != nil {
		logger.Error().Err(err).Msg("encode thumbnail failed")
		return p.markFailed(ctx, payload.ImageID)
	}

	variantKey := thumbnailKey(payload.ObjectKey, contentType)
	if _, err := p.objects.Put(ctx, p.objects.VariantsBucket(), variantKey, thumb, contentType); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}

	if err := p.images.MarkProcessed(ctx, payload.ImageID, models.ImageStatusReady, &variantKey, bounds.Dx(), bounds.Dy()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Msg("image removed before thumbnail finished")
			return nil
		}
		return fmt.Errorf("mark processed: %w", err)
	}

	logger.Info().Str("variant_key", variantKey).Msg("thumbnail generated")
	return nil
}

// encodeThumbnail downscales to the configured width; smaller images keep their size.
func (p *Processor) encodeThumbnail(src image.Image, format string) ([]byte, string, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > p.opts.ThumbnailWidth {
		height = max(1, height*p.opts.ThumbnailWidth/width)
		width = p.opts.ThumbnailWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 82}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}

func thumbnailKey(objectKey, contentType string) string {
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	base := strings.TrimSuffix(objectKey, path.Ext(objectKey))
	return path.Join("thumbs", base+ext)
}

func (p *Processor) markFailed(ctx context.Context, imageID string) error {
	err := p.images.MarkProcessed(ctx, imageID, models.ImageStatusFailed, nil, 0, 0)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (p *Processor) handleInquiryNotification(ctx context.Context, payload queue.InquiryNotificationPayload) error {
	logger := p.logger.With().Str("inquiry_id", payload.InquiryID).Logger()

	if p.mailer == nil || p.opts.SalesInbox == "" {
		logger.Debug().Msg("smtp not configured, notification skipped")
		return nil
	}

	inquiry, err := p.inquiries.GetByID(ctx, payload.InquiryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Msg("inquiry gone before notification")
			return nil
		}
		return fmt.Errorf("load inquiry: %w", err)
	}

	if err := p.mailer.DialAndSend(p.inquiryMessage(inquiry)); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	logger.Info().Str("to", p.opts.SalesInbox).Msg("inquiry notification sent")
	return nil
}

func (p *Processor) inquiryMessage(in models.Inquiry) *gomail.Message {
	subject := "New inquiry from " + in.FullName
	if in.ProductName != nil && *in.ProductName != "" {
		subject += " about " + *in.ProductName
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\nEmail: %s\n", in.FullName, in.Email)
	writeOptional(&body, "Phone", in.Phone)
	writeOptional(&body, "Company", in.CompanyName)
	writeOptional(&body, "Region", in.Region)
	writeOptional(&body, "Budget", in.Budget)
	fmt.Fprintf(&body, "Priority: %s\nSource: %s\n\n%s\n", in.Priority, in.Source, in.Message)

	m := gomail.NewMessage()
	m.SetHeader("From", p.opts.MailFrom)
	m.SetHeader("To", p.opts.SalesInbox)
	m.SetHeader("Reply-To", in.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body.String())
	return m
}

func writeOptional(b *strings.Builder, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(b, "%s: %s\n", label, *v)
	}
}

func (p *Processor) handleCleanup(ctx context.Context, payload queue.CleanupPayload) error {
	switch payload.Scope {
	case "activity":
		return p.pruneActivity(ctx)
	case "images":
		return p.pruneFailedImages(ctx)
	case "":
		return errors.Join(p.pruneActivity(ctx), p.pruneFailedImages(ctx))
	default:
		p.logger.Warn().Str("scope", payload.Scope).Msg("unknown cleanup scope")
		return nil
	}
}

func (p *Processor) pruneActivity(ctx context.Context) error {
	if p.opts.ActivityRetention <= 0 {
		return nil
	}
	cutoff := p.now().Add(-p.opts.ActivityRetention)
	deleted, err := p.activity.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}
	p.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("activity log pruned")
	return nil
}

func (p *Processor) pruneFailedImages(ctx context.Context) error {
	failed, err := p.images.ListFailedBefore(ctx, p.now().Add(-failedImageGrace), cleanupBatch)
	if err != nil {
		return fmt.Errorf("list failed images: %w", err)
	}

	for _, img := range failed {
		if err := p.objects.Remove(ctx, img.Bucket, img.ObjectKey); err != nil {
			p.logger.Warn().Err(err).Str("image_id", img.ID).Msg("remove failed original")
			continue
		}
		if err := p.images.Delete(ctx, img.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			p.logger.Warn().Err(err).Str("image_id", img.ID).Msg("delete failed image row")
		}
	}
	if len(failed) > 0 {
		p.logger.Info().Int("removed", len(failed)).Msg("failed images cleaned")
	}
	return nil
}
