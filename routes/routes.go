package routes

import (
	"net/http"

	"invensys/app"
	"invensys/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	userCtl := controllers.NewUserController(s)
	laptopCtl := controllers.NewLaptopController(s)
	allocCtl := controllers.NewAllocationController(s)
	docCtl := controllers.NewDocumentController(s)
	procCtl := controllers.NewProcurementController(s)
	repairCtl := controllers.NewRepairController(s)
	masterCtl := controllers.NewMasterDataController(s)
	auditCtl := controllers.NewAuditController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.Sessions, a.Repo)
	adminMW := app.AdminOnly(a.Repo, a.Log)
	seenMW := app.TouchLastSeen(a.Repo, app.NewSeenGate(a.RDB, a.Repo.Clock, a.Config.LastSeenThrottle), a.Log)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// 登录（公开）
	// ------------------------------
	r.POST("/api/login", authCtl.Login)

	api := r.Group("/api", authMW, seenMW, app.UUIDParams())
	{
		api.POST("/logout", authCtl.Logout)
		api.GET("/whoami", authCtl.WhoAmI)

		// 只读：登录即可
		api.GET("/statuses", laptopCtl.ListStatuses)
		api.GET("/laptops", laptopCtl.ListLaptops)
		api.GET("/laptops/:id", laptopCtl.GetLaptop)
		api.GET("/laptops/serial/:serial", laptopCtl.GetLaptopBySerial)
		api.GET("/allocations", allocCtl.ListAllocations)
		api.GET("/allocations/:id", allocCtl.ShowAllocation)
	}

	// 其余全部仅管理员
	admin := api.Group("", adminMW)

	// ------------------------------
	// 资产登记
	// ------------------------------
	{
		admin.GET("/laptops/overview", laptopCtl.Overview)
		admin.POST("/laptops", laptopCtl.CreateLaptop)
		admin.PUT("/laptops/:id/status", laptopCtl.ChangeStatus)
		admin.DELETE("/laptops/:id", laptopCtl.DeleteLaptop)
	}

	// ------------------------------
	// 分配 / 归还 / 表单
	// ------------------------------
	{
		admin.POST("/allocations", allocCtl.CreateAllocation)
		admin.PUT("/allocations/:id/return", allocCtl.ReturnLaptop)
		admin.GET("/allocations/:id/forms/:kind", docCtl.GenerateForm)
		admin.PUT("/allocations/:id/forms/:kind", docCtl.UploadForm)
		admin.GET("/allocations/:id/forms/:kind/url", docCtl.DownloadForm)
	}

	// ------------------------------
	// 采购（全部审计）
	// ------------------------------
	{
		admin.POST("/procurement", procCtl.CreatePurchase)
		admin.GET("/procurement", procCtl.SearchRecords) // ?purchaseOrder=&purchaseDate=&vendor=
		admin.GET("/procurement/:id", procCtl.SelectRecord)
		admin.GET("/procurement/:id/exists", procCtl.RecordExists)
		admin.PUT("/procurement/:id/po", docCtl.UploadPurchaseOrder)
		admin.GET("/procurement/:id/po", docCtl.DownloadPurchaseOrder)
	}

	// ------------------------------
	// 维修记录
	// ------------------------------
	{
		admin.POST("/repairs", repairCtl.CreateRepair)
		admin.GET("/repairs", repairCtl.ListRepairs)
		admin.GET("/repairs/:id", repairCtl.GetRepair)
	}

	// ------------------------------
	// 用户管理
	// ------------------------------
	{
		admin.POST("/users", userCtl.CreateUser)
		admin.GET("/users", userCtl.ListUsers) // ?active=&username=
		admin.GET("/users/:username", userCtl.GetUser)
		admin.PUT("/users/:username/admin", userCtl.SetAdmin)
		admin.DELETE("/users/:id", userCtl.DeleteUser)
	}

	// ------------------------------
	// 基础数据
	// ------------------------------
	{
		admin.POST("/business-units", masterCtl.CreateBusinessUnit)
		admin.GET("/business-units", masterCtl.ListBusinessUnits)
		admin.GET("/business-units/:id", masterCtl.GetBusinessUnit)
		admin.PUT("/business-units/:id", masterCtl.RenameBusinessUnit)
		admin.DELETE("/business-units/:id", masterCtl.DeleteBusinessUnit)

		admin.POST("/departments", masterCtl.CreateDepartment)
		admin.GET("/departments", masterCtl.ListDepartments)
		admin.GET("/departments/:id", masterCtl.GetDepartment)
		admin.DELETE("/departments/:id", masterCtl.DeleteDepartment)

		admin.GET("/organization", masterCtl.GetOrganization)
		admin.PUT("/organization", masterCtl.UpsertOrganization)

		admin.POST("/accessories", masterCtl.CreateAccessory)
		admin.GET("/accessories", masterCtl.ListAccessories)
		admin.GET("/accessories/:id", masterCtl.GetAccessory)
		admin.PUT("/accessories/:id/assign", masterCtl.AssignAccessory)
	}

	admin.GET("/audit", auditCtl.ListAudit)
}
