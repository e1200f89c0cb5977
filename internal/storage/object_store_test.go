package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"computing-marketplace/api/internal/config"
)

func TestPublicURL(t *testing.T) {
	cfg := config.StorageConfig{Endpoint: "minio:9000"}
	assert.Equal(t, "http://minio:9000/originals/2026/10/15/a.png", PublicURL(cfg, "originals", "2026/10/15/a.png"))

	cfg.UseSSL = true
	assert.Equal(t, "https://minio:9000/originals/a.png", PublicURL(cfg, "originals", "a.png"))

	cfg.PublicURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/originals/a.png", PublicURL(cfg, "originals", "a.png"))
}
