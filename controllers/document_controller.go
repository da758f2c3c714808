package controllers

import (
	"fmt"
	"io"
	"net/http"

	"invensys/app"
	"invensys/forms"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

type DocumentController struct{ *Srv }

func NewDocumentController(s *Srv) *DocumentController { return &DocumentController{Srv: s} }

func kindParam(c *gin.Context) (forms.Kind, bool) {
	kind, err := forms.ParseKind(c.Param("kind"))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return kind, true
}

// readUpload reads the multipart "file" field.
func readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return "", nil, false
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, app.H{"error": "too_large", "message": fmt.Sprintf("file exceeds %d bytes", maxUploadBytes)})
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		respondError(c, err)
		return "", nil, false
	}
	return fh.Filename, data, true
}

// GET /api/allocations/:id/forms/:kind
func (dc *DocumentController) GenerateForm(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	form, err := dc.Docs.GenerateForm(c.Request.Context(), app.ActorFrom(c), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, form.FileName))
	c.Data(http.StatusOK, "application/pdf", form.Data)
}

// PUT /api/allocations/:id/forms/:kind
func (dc *DocumentController) UploadForm(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	upload := dc.Docs.UploadAllocationForm
	if kind == forms.Return {
		upload = dc.Docs.UploadReturnForm
	}
	key, err := upload(c.Request.Context(), app.ActorFrom(c), c.Param("id"), name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, app.H{"key": key})
}

// GET /api/allocations/:id/forms/:kind/url
func (dc *DocumentController) DownloadForm(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	download := dc.Docs.DownloadAllocationForm
	if kind == forms.Return {
		download = dc.Docs.DownloadReturnForm
	}
	url, err := download(c.Request.Context(), app.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"url": url, "expiresIn": int(dc.Cfg.PresignTTL.Seconds())})
}

// PUT /api/procurement/:id/po
func (dc *DocumentController) UploadPurchaseOrder(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	key, err := dc.Docs.UploadPurchaseOrder(c.Request.Context(), app.ActorFrom(c), c.Param("id"), name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, app.H{"key": key})
}

// GET /api/procurement/:id/po
func (dc *DocumentController) DownloadPurchaseOrder(c *gin.Context) {
	url, err := dc.Docs.DownloadPurchaseOrder(c.Request.Context(), app.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"url": url, "expiresIn": int(dc.Cfg.PresignTTL.Seconds())})
}
