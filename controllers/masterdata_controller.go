package controllers

import (
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
)

// MasterDataController serves business units, departments, the organization
// header and accessories.
type MasterDataController struct{ *Srv }

func NewMasterDataController(s *Srv) *MasterDataController { return &MasterDataController{Srv: s} }

type nameBody struct {
	Name string `json:"name" binding:"required"`
}

// --- business units ---

func (mc *MasterDataController) CreateBusinessUnit(c *gin.Context) {
	var in nameBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	bu, err := mc.Repo.CreateBusinessUnit(c.Request.Context(), app.ActorFrom(c).ID, in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bu)
}

func (mc *MasterDataController) ListBusinessUnits(c *gin.Context) {
	units, err := mc.Repo.ListBusinessUnits(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": units})
}

func (mc *MasterDataController) GetBusinessUnit(c *gin.Context) {
	bu, err := mc.Repo.GetBusinessUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bu)
}

func (mc *MasterDataController) RenameBusinessUnit(c *gin.Context) {
	var in nameBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	bu, err := mc.Repo.RenameBusinessUnit(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id"), in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bu)
}

func (mc *MasterDataController) DeleteBusinessUnit(c *gin.Context) {
	if err := mc.Repo.DeleteBusinessUnit(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// --- departments ---

func (mc *MasterDataController) CreateDepartment(c *gin.Context) {
	var in nameBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := mc.Repo.CreateDepartment(c.Request.Context(), app.ActorFrom(c).ID, in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (mc *MasterDataController) ListDepartments(c *gin.Context) {
	ds, err := mc.Repo.ListDepartments(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ds})
}

func (mc *MasterDataController) GetDepartment(c *gin.Context) {
	d, err := mc.Repo.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (mc *MasterDataController) DeleteDepartment(c *gin.Context) {
	if err := mc.Repo.DeleteDepartment(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// --- organization ---

func (mc *MasterDataController) GetOrganization(c *gin.Context) {
	org, err := mc.Repo.GetOrganization(c.Request.Context(), mc.Cfg.OrgName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (mc *MasterDataController) UpsertOrganization(c *gin.Context) {
	var in struct {
		Name          string `json:"organizationName" binding:"required"`
		StreetAddress string `json:"streetAddress"`
		POBox         string `json:"poBox"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	org, err := mc.Repo.UpsertOrganization(c.Request.Context(), app.ActorFrom(c).ID, db.OrganizationInput{
		Name:          in.Name,
		StreetAddress: in.StreetAddress,
		POBox:         in.POBox,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// --- accessories ---

func (mc *MasterDataController) CreateAccessory(c *gin.Context) {
	var in struct {
		Name         string `json:"name" binding:"required"`
		SerialNumber string `json:"serialNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	acc, err := mc.Repo.CreateAccessory(c.Request.Context(), app.ActorFrom(c).ID, in.Name, in.SerialNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

func (mc *MasterDataController) ListAccessories(c *gin.Context) {
	accs, err := mc.Repo.ListAccessories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": accs})
}

func (mc *MasterDataController) GetAccessory(c *gin.Context) {
	acc, err := mc.Repo.GetAccessory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// PUT /api/accessories/:id/assign，allocationId 为空表示解除关联
func (mc *MasterDataController) AssignAccessory(c *gin.Context) {
	var in struct {
		AllocationID string `json:"allocationId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	acc, err := mc.Repo.AssignAccessory(c.Request.Context(), app.ActorFrom(c).ID, c.Param("id"), in.AllocationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
