package controllers

import (
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProcurementController struct{ *Srv }

func NewProcurementController(s *Srv) *ProcurementController {
	return &ProcurementController{Srv: s}
}

// POST /api/procurement
func (pc *ProcurementController) CreatePurchase(c *gin.Context) {
	var in struct {
		LaptopID       string          `json:"laptopId" binding:"required"`
		PurchaseDate   string          `json:"purchaseDate" binding:"required"`
		PurchaseOrder  string          `json:"purchaseOrder" binding:"required"`
		Vendor         string          `json:"vendor" binding:"required"`
		WarrantyExpiry string          `json:"warrantyExpiry" binding:"required"`
		Cost           decimal.Decimal `json:"cost"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	purchased, err := parseDate(in.PurchaseDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	warranty, err := parseDate(in.WarrantyExpiry)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if in.Cost.IsNegative() {
		badRequest(c, "cost must not be negative")
		return
	}
	rec, err := pc.Repo.CreatePurchase(c.Request.Context(), app.ActorFrom(c), db.CreatePurchaseInput{
		LaptopID:       in.LaptopID,
		PurchaseDate:   purchased,
		PurchaseOrder:  in.PurchaseOrder,
		Vendor:         in.Vendor,
		WarrantyExpiry: warranty,
		Cost:           in.Cost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GET /api/procurement/:id
func (pc *ProcurementController) SelectRecord(c *gin.Context) {
	rec, err := pc.Repo.GetRecord(c.Request.Context(), app.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/procurement/:id/exists
func (pc *ProcurementController) RecordExists(c *gin.Context) {
	ok, err := pc.Repo.RecordExists(c.Request.Context(), app.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"exists": ok})
}

// GET /api/procurement?purchaseOrder=&purchaseDate=YYYY-MM-DD&vendor=
func (pc *ProcurementController) SearchRecords(c *gin.Context) {
	day, err := parseOptionalDate(c.Query("purchaseDate"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	recs, err := pc.Repo.SearchRecords(c.Request.Context(), app.ActorFrom(c), db.RecordSearch{
		PurchaseOrder: c.Query("purchaseOrder"),
		PurchaseDate:  day,
		Vendor:        c.Query("vendor"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": recs})
}
