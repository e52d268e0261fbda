package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"fundilink/services/storage"

	"github.com/gin-gonic/gin"
)

// StorageHandler handles completion-photo uploads.
type StorageHandler struct {
	StorageSvc storage.StorageService
}

func NewStorageHandler(svc storage.StorageService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc}
}

// UploadCompletionPhoto stores one photo of finished work and returns
// its public URL, which the fundi then attaches via the complete call.
func (h *StorageHandler) UploadCompletionPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided", "details": err.Error()})
		return
	}

	tempFilePath := filepath.Join(os.TempDir(), fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file", "details": err.Error()})
		return
	}
	defer os.Remove(tempFilePath)

	destFolder := "completions/" + c.Param("id")
	publicID, err := h.StorageSvc.UploadFile(c, tempFilePath, destFolder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file", "details": err.Error()})
		return
	}

	url, err := h.StorageSvc.DownloadURL(publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to construct download URL", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"public_id": publicID,
		"url":       url,
	})
}
