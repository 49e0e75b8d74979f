package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	testHandler    *TestHandler
	gradeHandler   *GradeHandler
	catalogHandler *CatalogHandler
	authMiddleware *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authorizer *auth.Authorizer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), serviceManager, logger),
		userHandler:    NewUserHandler(serviceManager.Users(), logger),
		testHandler:    NewTestHandler(serviceManager.Tests(), logger),
		gradeHandler:   NewGradeHandler(serviceManager.Grades(), serviceManager.Reports(), logger),
		catalogHandler: NewCatalogHandler(serviceManager.Catalog(), logger),
		authMiddleware: NewJWTAuthMiddleware(authorizer),
	}
}

// SetupRoutes sets up all API routes. metrics may be nil.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, metrics *Metrics) {
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	public := router.Group("/public")
	{
		public.POST("/auth/login", hm.authHandler.Login)
		public.POST("/auth/register", hm.authHandler.Register)
		public.GET("/health", hm.authHandler.Health)
	}

	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("")
	api.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Account administration - Admins only, except the active-user directory
		adminUsers := api.Group("/admin/users")
		{
			adminUsers.GET("/active", hm.userHandler.ListActiveUsers)

			adminUsers.GET("", adminOnly, hm.userHandler.ListUsers)
			adminUsers.POST("", adminOnly, hm.userHandler.CreateUser)
			adminUsers.GET("/:username", adminOnly, hm.userHandler.GetUser)
			adminUsers.DELETE("/:username", adminOnly, hm.userHandler.DeleteUser)
			adminUsers.PUT("/:username/password", adminOnly, hm.userHandler.SetPassword)
			adminUsers.PUT("/:username/active", adminOnly, hm.userHandler.SetActive)
			adminUsers.POST("/:username/roles", adminOnly, hm.userHandler.GrantRole)
			adminUsers.PUT("/:username/roles", adminOnly, hm.userHandler.ReplaceRoles)
			adminUsers.DELETE("/:username/roles/:role", adminOnly, hm.userHandler.RevokeRole)
		}

		// Self-service
		users := api.Group("/users")
		{
			users.GET("/me", hm.userHandler.Me)
			users.PUT("/me/password", hm.userHandler.ChangePassword)
		}

		tests := api.Group("/tests")
		{
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.POST("", hm.testHandler.CreateTest)
			tests.PUT("/:id", adminOnly, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", adminOnly, hm.testHandler.DeleteTest)
		}

		// Ownership checks for single grades happen in the service
		grades := api.Group("/grades")
		{
			grades.GET("", hm.gradeHandler.ListGrades)
			grades.POST("", hm.gradeHandler.CreateGrade)
			grades.GET("/view", hm.gradeHandler.ListGradeViews)
			grades.GET("/view/own", hm.gradeHandler.ListOwnGradeViews)
			grades.GET("/view/export", hm.gradeHandler.ExportGradeViews)
			grades.GET("/semesters/:semesterId/results", hm.gradeHandler.SemesterResults)
			grades.GET("/semesters/:semesterId/report", hm.gradeHandler.SemesterReport)
			grades.GET("/:id", hm.gradeHandler.GetGrade)
			grades.PUT("/:id", adminOnly, hm.gradeHandler.UpdateGrade)
			grades.DELETE("/:id", hm.gradeHandler.DeleteGrade)
		}

		// Catalog - reads for everyone, writes for Admins
		hm.catalogRoutes(api.Group("/subjects"), adminOnly,
			hm.catalogHandler.ListSubjects, hm.catalogHandler.GetSubject, hm.catalogHandler.CreateSubject,
			hm.catalogHandler.UpdateSubject, hm.catalogHandler.DeleteSubject)
		hm.catalogRoutes(api.Group("/semesters"), adminOnly,
			hm.catalogHandler.ListSemesters, hm.catalogHandler.GetSemester, hm.catalogHandler.CreateSemester,
			hm.catalogHandler.UpdateSemester, hm.catalogHandler.DeleteSemester)
		hm.catalogRoutes(api.Group("/semester-subjects"), adminOnly,
			hm.catalogHandler.ListSemesterSubjects, hm.catalogHandler.GetSemesterSubject, hm.catalogHandler.CreateSemesterSubject,
			hm.catalogHandler.UpdateSemesterSubject, hm.catalogHandler.DeleteSemesterSubject)
		hm.catalogRoutes(api.Group("/classes"), adminOnly,
			hm.catalogHandler.ListClasses, hm.catalogHandler.GetClass, hm.catalogHandler.CreateClass,
			hm.catalogHandler.UpdateClass, hm.catalogHandler.DeleteClass)
	}
}

func (hm *HandlerManager) catalogRoutes(g *gin.RouterGroup, adminOnly gin.HandlerFunc, list, get, create, update, del gin.HandlerFunc) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", adminOnly, create)
	g.PUT("/:id", adminOnly, update)
	g.DELETE("/:id", adminOnly, del)
}
