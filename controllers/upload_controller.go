package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/utils"
)

// UploadController stores and serves files under the upload directory.
type UploadController struct {
	uploadDir string
	maxBytes  int64
	respond   *Responder
}

// NewUploadController creates an UploadController.
func NewUploadController(cfg *config.Config, respond *Responder) *UploadController {
	return &UploadController{uploadDir: cfg.UploadDir, maxBytes: cfg.MaxUploadBytes(), respond: respond}
}

// Upload handles POST /api/upload?folder= - stores the multipart field "file"
func (h *UploadController) Upload(c *gin.Context) {
	// room for the multipart envelope around the file
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respond.Fail(c, http.StatusBadRequest, "MISSING_FILE", "A file must be sent in the \"file\" field")
		return
	}
	if err := utils.ValidateUpload(fileHeader, h.maxBytes); err != nil {
		h.respond.Error(c, err)
		return
	}

	folder := utils.SanitizeFolder(c.Query("folder"))
	filename, err := utils.SaveUploadedFile(fileHeader, h.uploadDir, folder)
	if err != nil {
		h.respond.Error(c, err)
		return
	}

	h.respond.OK(c, http.StatusCreated, gin.H{
		"url":      utils.GetUploadURL(folder, filename),
		"filename": filename,
		"folder":   folder,
	})
}

// Serve handles GET /uploads/:folder/:filename - serves uploaded files
func (h *UploadController) Serve(c *gin.Context) {
	filePath, err := utils.ResolveUploadPath(h.uploadDir, c.Param("folder"), c.Param("filename"))
	if err != nil {
		h.respond.Error(c, err)
		return
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		h.respond.Fail(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
