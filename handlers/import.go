package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"livebait-directory/importer"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImportHandler accepts import uploads and runs each as a background
// batch. Only one batch runs at a time.
type ImportHandler struct {
	Importer  *importer.Importer
	Jobs      *utils.JobStore
	Delimiter string
	Log       logrus.FieldLogger

	// OnComplete, when set, is called after each batch finishes.
	OnComplete func(job uuid.UUID, res importer.Result)

	wg sync.WaitGroup
}

// StartImport reads the uploaded file and starts a batch over its rows.
func (h *ImportHandler) StartImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if err := utils.ValidateImportUpload(fh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	rows, err := importer.ReadUpload(f, fh.Filename, h.Delimiter)
	f.Close()
	if err != nil {
		h.Log.WithError(err).WithField("file", fh.Filename).Warn("Rejected import upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse file: " + err.Error()})
		return
	}

	job, err := h.Jobs.StartJob(fh.Filename, len(rows))
	if errors.Is(err, utils.ErrJobRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "An import is already running"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start import"})
		return
	}

	h.wg.Add(1)
	go h.run(job.ID, rows)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
		"total":  job.Total,
	})
}

func (h *ImportHandler) run(id uuid.UUID, rows []importer.RawRecord) {
	defer h.wg.Done()

	log := h.Log.WithField("job_id", id)
	log.Info("Import job started")
	h.Jobs.SetProcessing(id)

	var res importer.Result
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Import job crashed")
			h.Jobs.CompleteJob(id, errors.New("import crashed"))
			return
		}
		h.Jobs.CompleteJob(id, nil)
		log.WithFields(logrus.Fields{"imported": res.Imported, "skipped": res.Skipped}).Info("Import job finished")
		if h.OnComplete != nil {
			h.OnComplete(id, res)
		}
	}()

	// The batch belongs to the job, not to the upload request.
	res = h.Importer.RunBatchWithProgress(context.Background(), rows, func(r importer.Result) {
		h.Jobs.SetCounts(id, r.Imported, r.Skipped)
	})
}

// Wait blocks until every started batch has finished.
func (h *ImportHandler) Wait() {
	h.wg.Wait()
}

func (h *ImportHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	job, ok := h.Jobs.GetJob(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
