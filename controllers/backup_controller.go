package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/logger"
	"github.com/kendall-kelly/box-erp-api/services"
)

// BackupController serves /api/backup.
type BackupController struct {
	backups *services.BackupService
	offsite *services.OffsiteBackupService
	respond *Responder
	now     func() time.Time
}

// NewBackupController creates a BackupController.
func NewBackupController(backups *services.BackupService, offsite *services.OffsiteBackupService, respond *Responder) *BackupController {
	return &BackupController{backups: backups, offsite: offsite, respond: respond, now: time.Now}
}

// Export handles GET /api/backup/export - streams a tar.gz of the database and uploads
func (h *BackupController) Export(c *gin.Context) {
	name := services.ArchiveName(h.now())
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)

	if err := h.backups.Export(c.Request.Context(), c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Type", "")
			c.Header("Content-Disposition", "")
			h.respond.Error(c, err)
			return
		}
		// the archive is already partly sent
		logger.FromContext(c.Request.Context()).Error("backup export aborted", slog.String("error", err.Error()))
		c.Abort()
	}
}

// Import handles POST /api/backup/import - restores an uploaded archive and schedules a restart
func (h *BackupController) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respond.Fail(c, http.StatusBadRequest, "MISSING_FILE", "A backup archive must be sent in the \"file\" field")
		return
	}

	archive, err := fileHeader.Open()
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	defer archive.Close()

	result, err := h.backups.Import(c.Request.Context(), archive)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, result)
}

// Offsite handles POST /api/backup/offsite - copies a fresh archive to S3
func (h *BackupController) Offsite(c *gin.Context) {
	result, err := h.offsite.Upload(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusCreated, result)
}
