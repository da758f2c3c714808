package controllers

import (
	"net/http"
	"strconv"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
)

type LaptopController struct{ *Srv }

func NewLaptopController(s *Srv) *LaptopController { return &LaptopController{Srv: s} }

// POST /api/laptops
func (lc *LaptopController) CreateLaptop(c *gin.Context) {
	var in struct {
		Brand          string  `json:"brand" binding:"required"`
		Model          string  `json:"model" binding:"required"`
		SerialNumber   string  `json:"serialNumber" binding:"required"`
		Name           string  `json:"name" binding:"required"`
		AssetTag       string  `json:"assetTag"`
		StatusID       *uint   `json:"statusId"`
		BusinessUnitID *string `json:"businessUnitId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	lp, err := lc.Repo.CreateLaptop(c.Request.Context(), app.ActorFrom(c).ID, db.CreateLaptopInput{
		Brand:          in.Brand,
		Model:          in.Model,
		SerialNumber:   in.SerialNumber,
		Name:           in.Name,
		AssetTag:       in.AssetTag,
		StatusID:       in.StatusID,
		BusinessUnitID: in.BusinessUnitID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lp)
}

// GET /api/laptops/:id
func (lc *LaptopController) GetLaptop(c *gin.Context) {
	lp, err := lc.Repo.GetLaptop(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lp)
}

// GET /api/laptops/serial/:serial
func (lc *LaptopController) GetLaptopBySerial(c *gin.Context) {
	lp, err := lc.Repo.FindLaptopBySerial(c.Request.Context(), c.Param("serial"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lp)
}

// GET /api/laptops?status=available&businessUnitId=
func (lc *LaptopController) ListLaptops(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	laptops, err := lc.Repo.ListLaptops(c.Request.Context(), db.LaptopFilter{
		Status:         status,
		BusinessUnitID: c.Query("businessUnitId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": laptops})
}

// GET /api/laptops/overview?q=&status=&page=&size=
func (lc *LaptopController) Overview(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	q := db.LaptopOverviewQuery{Q: c.Query("q"), Status: status}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := lc.Repo.ListLaptopOverview(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/laptops/:id/status
func (lc *LaptopController) ChangeStatus(c *gin.Context) {
	var in struct {
		StatusID uint `json:"statusId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	lp, err := lc.Repo.ChangeLaptopStatus(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id"), in.StatusID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lp)
}

// DELETE /api/laptops/:id
func (lc *LaptopController) DeleteLaptop(c *gin.Context) {
	lp, err := lc.Repo.DeleteLaptop(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "laptop": lp})
}

// GET /api/statuses
func (lc *LaptopController) ListStatuses(c *gin.Context) {
	rows, err := lc.Repo.ListStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}
