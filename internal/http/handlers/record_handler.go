package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-checkin-backend/internal/services"
	"github.com/tbourn/go-checkin-backend/internal/utils"
)

// LatestRecord godoc
// @ID          latestRecord
// @Summary     Latest check-in for a code
// @Description Returns the most recently received record stored for the code.
// @Tags        Records
// @Produce     json
//
// @Param       code  path  string  true  "Scanned code"  example(ABC123)
//
// @Success     200  {object}  domain.Record
// @Failure     404  {object}  handlers.ErrorResponse  "No record for code"
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Router      /records/{code}/latest [get]
func (h *Handlers) LatestRecord(c *gin.Context) {
	rec, err := h.svc.Lookup(c.Request.Context(), c.Param("code"))
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no check-in recorded for code")
		return
	case err != nil:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeLookupFailed, "lookup failed")
		return
	}
	ok(c, http.StatusOK, rec)
}

// ListFiles godoc
// @ID          listFiles
// @Summary     List stored check-ins
// @Description Storage keys in chronological order, paginated.
// @Tags        Files
// @Produce     json
//
// @Param       page       query  int  false  "Page number (1-based)"  minimum(1)  default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1)  maximum(100)  default(20)
//
// @Success     200  {object}  handlers.ListFilesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Router      /files [get]
func (h *Handlers) ListFiles(c *gin.Context) {
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))

	keys, err := h.svc.Enumerate(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list files")
		return
	}

	start, end, totalPages := utils.PageBounds(len(keys), page, pageSize)
	files := make([]string, 0, end-start)
	files = append(files, keys[start:end]...)

	ok(c, http.StatusOK, ListFilesResponse{
		Files: files,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      len(keys),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// DownloadFile godoc
// @ID          downloadFile
// @Summary     Download a stored check-in
// @Description Returns the stored unit byte for byte as an attachment.
// @Tags        Files
// @Produce     json
//
// @Param       key  path  string  true  "Storage key"  example(scan_20250901_080000_a1b2c3.json)
//
// @Success     200  {file}    file
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid key"
// @Failure     404  {object}  handlers.ErrorResponse  "No such key"
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Router      /files/{key} [get]
func (h *Handlers) DownloadFile(c *gin.Context) {
	key := c.Param("key")
	raw, err := h.svc.Download(c.Request.Context(), key)
	switch {
	case errors.Is(err, services.ErrInvalidKey):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid file key")
		return
	case errors.Is(err, services.ErrFileNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "file not found")
		return
	case err != nil:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeDownloadFailed, "download failed")
		return
	}
	attachment(c, key, "application/json; charset=utf-8", raw)
}
