package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/internal/recipe/service"
	"github.com/recipebox/recipe-service/pkg/logger"
	"github.com/recipebox/recipe-service/pkg/metrics"
)

// BlobStore is the subset of internal/storage.MinIOStorage the backup handler needs.
type BlobStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// snapshot is the document written to the bucket.
type snapshot struct {
	TakenAt string           `json:"taken_at"`
	Count   int              `json:"count"`
	Recipes []*recipe.Recipe `json:"recipes"`
}

const backupURLExpiry = 15 * time.Minute

// RegisterBackup mounts POST /admin/backup. store may be nil, in which case the
// route answers 503. mw runs before the handler (auth when enabled). The raw
// error is only included in 500 bodies when exposeErrors is set.
func RegisterBackup(r gin.IRouter, svc service.Service, store BlobStore, exposeErrors bool, mw ...gin.HandlerFunc) {
	fail := func(c *gin.Context, msg string, err error) {
		metrics.BackupsWritten.WithLabelValues("error").Inc()
		logger.Errorf("backup: %s: %v", msg, err)
		body := gin.H{"message": msg}
		if exposeErrors {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
	h := func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Backup storage is not configured"})
			return
		}
		ctx := c.Request.Context()
		list, err := svc.List(ctx)
		if err != nil {
			fail(c, "Error fetching recipes", err)
			return
		}
		if list == nil {
			list = []*recipe.Recipe{}
		}
		now := recipe.Now()
		body, err := json.Marshal(snapshot{TakenAt: recipe.FormatTime(now), Count: len(list), Recipes: list})
		if err != nil {
			fail(c, "Error encoding backup", err)
			return
		}
		key := fmt.Sprintf("backups/recipes-%s.json", now.Format("20060102T150405.000Z"))
		if err := store.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
			fail(c, "Error writing backup", fmt.Errorf("upload %s: %w", key, err))
			return
		}
		metrics.BackupsWritten.WithLabelValues("ok").Inc()
		logger.Infof("backup: wrote %d recipes to %s", len(list), key)

		resp := gin.H{"message": "Backup written", "key": key, "count": len(list)}
		if u, err := store.GetPresignedURL(ctx, key, backupURLExpiry); err != nil {
			logger.Warnf("backup: presign %s: %v", key, err)
		} else {
			resp["url"] = u
		}
		c.JSON(http.StatusOK, resp)
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	r.POST("/admin/backup", handlers...)
}
