package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/services"
	"github.com/yoockh/cvstudio/internal/storage"
	"github.com/yoockh/cvstudio/internal/utils"
)

type CVHandler struct {
	uploads  services.UploadService
	cvs      services.CVService
	files    storage.TempStore
	maxBytes int64 // per file
	log      logrus.FieldLogger
}

func NewCVHandler(uploads services.UploadService, cvs services.CVService, files storage.TempStore, maxUploadMB int64, log logrus.FieldLogger) *CVHandler {
	return &CVHandler{uploads: uploads, cvs: cvs, files: files, maxBytes: maxUploadMB << 20, log: log}
}

type uploadResponse struct {
	Message     string             `json:"message"`
	CVID        string             `json:"cvId"`
	FormattedCV models.FormattedCV `json:"formattedCV"`
}

func (h *CVHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// three files plus multipart overhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 3*h.maxBytes+1<<20)

	var set models.UploadedFileSet
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		defer form.RemoveAll()
		if set, err = h.saveFiles(form); err != nil {
			h.discard(set)
			writeError(c, err)
			return
		}
	case isTooLarge(err):
		writeError(c, utils.E(utils.CodeInvalidArgument, "CVHandler.Upload",
			fmt.Sprintf("File too large (max %dMB)", h.maxBytes>>20), utils.ErrValidation))
		return
	}
	// an unreadable form leaves the set empty and fails as missing files

	// HandleUpload owns the saved files from here on
	res, err := h.uploads.HandleUpload(c.Request.Context(), userID, set)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{
		Message:     "CV uploaded successfully",
		CVID:        res.CVID,
		FormattedCV: res.FormattedCV,
	})
}

// discard removes files saved before the request was rejected.
func (h *CVHandler) discard(set models.UploadedFileSet) {
	for _, f := range set.Present() {
		if err := h.files.Remove(f.Path); err != nil {
			h.log.WithError(err).WithField("path", f.Path).Warn("failed to delete temp file")
		}
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge)
}

func (h *CVHandler) saveFiles(form *multipart.Form) (models.UploadedFileSet, error) {
	const op = "CVHandler.saveFiles"

	var set models.UploadedFileSet
	slots := []struct {
		field string
		dst   **models.UploadedFile
	}{
		{models.FieldResume, &set.Resume},
		{models.FieldEHSForm, &set.EHSForm},
		{models.FieldUserImage, &set.UserImage},
	}
	for _, s := range slots {
		fhs := form.File[s.field]
		if len(fhs) == 0 {
			continue
		}
		fh := fhs[0]
		if h.maxBytes > 0 && fh.Size > h.maxBytes {
			return set, utils.E(utils.CodeInvalidArgument, op,
				fmt.Sprintf("File too large (max %dMB)", h.maxBytes>>20), utils.ErrValidation)
		}
		saved, err := h.files.Save(s.field, fh)
		if err != nil {
			return set, utils.E(utils.CodeInternal, op, "Server error during file upload", fmt.Errorf("%w: %v", utils.ErrUpload, err))
		}
		*s.dst = saved
	}
	return set, nil
}

func (h *CVHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	out, err := h.cvs.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CVHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rec, err := h.cvs.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *CVHandler) DownloadPDF(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	f, err := h.cvs.RenderPDF(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func (h *CVHandler) PagePreview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CVHandler.PagePreview", "page must be a number", utils.ErrValidation))
		return
	}
	f, err := h.cvs.RenderPage(c.Request.Context(), userID, c.Param("id"), n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}
