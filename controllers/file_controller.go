package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/config"
	"github.com/mediavault/mediavault/middleware"
	"github.com/mediavault/mediavault/models"
	"github.com/mediavault/mediavault/utils"
)

// FileController handles media upload, listing and download. Bytes live on
// disk under random storage keys inside cfg.UploadDir; metadata rows link
// each key to its owning user.
type FileController struct {
	users *models.IdentityStore
	files *models.FileStore
	cfg   config.AppConfig
}

// NewFileController creates a FileController.
func NewFileController(users *models.IdentityStore, files *models.FileStore, cfg config.AppConfig) *FileController {
	return &FileController{users: users, files: files, cfg: cfg}
}

// Upload stores one media file for the authenticated user.
func (c *FileController) Upload(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Msg(ctx, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		utils.Msg(ctx, http.StatusBadRequest, "No selected file")
		return
	}

	if !utils.AllowedFile(header.Filename) {
		utils.Msg(ctx, http.StatusBadRequest, "File type not allowed")
		return
	}

	maxSize := int64(c.cfg.MaxUploadMB) << 20
	if header.Size > maxSize {
		utils.Msg(ctx, http.StatusBadRequest, "File too large")
		return
	}

	user, err := c.resolveUser(ctx)
	if err != nil {
		utils.Msg(ctx, http.StatusNotFound, "User not found")
		return
	}

	storageKey := utils.NewStorageKey(header.Filename)
	dstPath := filepath.Join(c.cfg.UploadDir, storageKey)

	// O_EXCL: a storage key collision fails the request instead of
	// overwriting another upload.
	out, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("create upload file %s: %v", dstPath, err)
		}
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to save file")
		return
	}

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to save file")
		return
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dstPath)
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to save file")
		return
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		utils.Msg(ctx, http.StatusBadRequest, "File too large")
		return
	}

	record := &models.UploadedFile{
		Filename:   utils.SanitizeFilename(header.Filename),
		StorageKey: storageKey,
		UserID:     user.ID,
	}
	if err := c.files.Create(record); err != nil {
		_ = os.Remove(dstPath)
		if utils.Sugar != nil {
			utils.Sugar.Errorf("record upload %s: %v", storageKey, err)
		}
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to record upload")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"msg":      "File uploaded successfully",
		"filename": record.Filename,
		"user_id":  record.UserID,
		"file":     c.downloadURL(ctx, record.StorageKey),
	})
}

// ListFiles returns the authenticated user's uploads in insertion order.
func (c *FileController) ListFiles(ctx *gin.Context) {
	user, err := c.resolveUser(ctx)
	if err != nil {
		utils.Msg(ctx, http.StatusNotFound, "User not found")
		return
	}

	files, err := c.files.ListByUser(user.ID)
	if err != nil {
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to list files")
		return
	}
	if len(files) == 0 {
		utils.Msg(ctx, http.StatusNotFound, "No files found for this user")
		return
	}

	entries := make([]gin.H, 0, len(files))
	for _, f := range files {
		entries = append(entries, gin.H{
			"filename":      f.Filename,
			"time_created":  f.TimeCreated,
			"download_link": c.downloadURL(ctx, f.StorageKey),
			"user_id":       f.UserID,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"files": entries})
}

// Download streams a stored file back to its owner. A key that does not
// exist and a key owned by someone else are indistinguishable.
func (c *FileController) Download(ctx *gin.Context) {
	user, err := c.resolveUser(ctx)
	if err != nil {
		utils.Msg(ctx, http.StatusNotFound, "User not found")
		return
	}

	storageKey := ctx.Param("storageKey")
	record, err := c.files.FindByOwnerAndKey(user.ID, storageKey)
	if err != nil {
		utils.Msg(ctx, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(c.cfg.UploadDir, filepath.Base(record.StorageKey))
	if _, err := os.Stat(path); err != nil {
		utils.Msg(ctx, http.StatusNotFound, "File not found")
		return
	}

	ctx.Header("Content-Type", utils.ContentTypeForKey(record.StorageKey))
	ctx.File(path)
}

// resolveUser maps the token subject set by the auth middleware back to a
// user row.
func (c *FileController) resolveUser(ctx *gin.Context) (*models.User, error) {
	username, ok := middleware.Username(ctx)
	if !ok {
		return nil, errors.New("no authenticated identity in context")
	}
	return c.users.FindByUsername(username)
}

func (c *FileController) downloadURL(ctx *gin.Context, storageKey string) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/files/%s", scheme, ctx.Request.Host, storageKey)
}
