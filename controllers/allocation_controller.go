package controllers

import (
	"errors"
	"io"
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
)

type AllocationController struct{ *Srv }

func NewAllocationController(s *Srv) *AllocationController { return &AllocationController{Srv: s} }

// POST /api/allocations
func (ac *AllocationController) CreateAllocation(c *gin.Context) {
	var in struct {
		LaptopID       string `json:"laptopId" binding:"required"`
		UserID         string `json:"userId" binding:"required"`
		AllocationDate string `json:"allocationDate"`
		Condition      string `json:"allocationCondition"`
		Reason         string `json:"reasonForAllocation"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseOptionalDate(in.AllocationDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	input := db.CreateAllocationInput{
		LaptopID:    in.LaptopID,
		UserID:      in.UserID,
		AllocatorID: app.ActorFrom(c).ID,
		Condition:   in.Condition,
		Reason:      in.Reason,
	}
	if date != nil {
		input.Date = *date
	}
	rec, err := ac.Repo.CreateAllocation(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// PUT /api/allocations/:id/return
func (ac *AllocationController) ReturnLaptop(c *gin.Context) {
	var in struct {
		ReturnDate        string `json:"returnDate"`
		Comment           string `json:"returnComment"`
		ConditionOnReturn string `json:"conditionOnReturn"`
	}
	// 请求体可省略，字段全部可选
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}
	}

	date, err := parseOptionalDate(in.ReturnDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	input := db.ReturnLaptopInput{
		AllocationID:      c.Param("id"),
		Comment:           in.Comment,
		ConditionOnReturn: in.ConditionOnReturn,
		ReturnerID:        app.ActorFrom(c).ID,
	}
	if date != nil {
		input.ReturnDate = *date
	}
	rec, err := ac.Repo.ReturnLaptop(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/allocations/:id
func (ac *AllocationController) ShowAllocation(c *gin.Context) {
	rec, err := ac.Repo.ShowAllocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/allocations?active=&username=&serialNumber=&laptopId=
func (ac *AllocationController) ListAllocations(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	recs, err := ac.Repo.ListAllocations(c.Request.Context(), db.AllocationFilter{
		IsActive:     active,
		Username:     c.Query("username"),
		SerialNumber: c.Query("serialNumber"),
		LaptopID:     c.Query("laptopId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": recs})
}
