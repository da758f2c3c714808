package controllers

import (
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RepairController struct{ *Srv }

func NewRepairController(s *Srv) *RepairController { return &RepairController{Srv: s} }

// POST /api/repairs
func (rc *RepairController) CreateRepair(c *gin.Context) {
	var in struct {
		LaptopID        string          `json:"laptopId" binding:"required"`
		Details         string          `json:"repairDetails" binding:"required"`
		FaultReported   string          `json:"dateFaultReported" binding:"required"`
		Repaired        string          `json:"dateLaptopRepaired"`
		Cost            decimal.Decimal `json:"costOfRepair"`
		Vendor          string          `json:"repairVendor"`
		WarrantyCovered bool            `json:"warrantyCovered"`
		InvoiceNumber   string          `json:"invoiceNumber"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	reported, err := parseDate(in.FaultReported)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	repaired, err := parseOptionalDate(in.Repaired)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if in.Cost.IsNegative() {
		badRequest(c, "cost must not be negative")
		return
	}
	actor := app.ActorFrom(c)
	entry, err := rc.Repo.CreateRepair(c.Request.Context(), actor.ID, db.CreateRepairInput{
		LaptopID:        in.LaptopID,
		Details:         in.Details,
		FaultReportedAt: reported,
		RepairedAt:      repaired,
		Cost:            in.Cost,
		Vendor:          in.Vendor,
		RepairedBy:      actor.ID,
		WarrantyCovered: in.WarrantyCovered,
		InvoiceNumber:   in.InvoiceNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GET /api/repairs?laptopId=
func (rc *RepairController) ListRepairs(c *gin.Context) {
	entries, err := rc.Repo.ListRepairs(c.Request.Context(), c.Query("laptopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": entries})
}

// GET /api/repairs/:id
func (rc *RepairController) GetRepair(c *gin.Context) {
	entry, err := rc.Repo.GetRepair(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
