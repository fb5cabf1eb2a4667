package app

import (
	"edu_quiz_backend/internal/config"
	"edu_quiz_backend/internal/middleware"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(s.activity))
	{
		// 学生答题接口
		student := authGroup.Group("")
		student.Use(middleware.RoleMiddleware(model.Student, model.Teacher))
		{
			student.POST("/quizzes/:quizId/attempts", c.attempt.Start)
			student.GET("/quizzes/:quizId/attempts", c.attempt.ListMine)
			student.GET("/attempts/:id", c.attempt.Resume)
			student.PUT("/attempts/:id/answers", c.attempt.UpdateAnswer)
			student.POST("/attempts/:id/submit", c.attempt.Submit)
		}

		// 教师接口
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/attempts/:id/force-submit", c.attempt.ForceSubmit)
			teacher.GET("/quizzes/:quizId/attempts", c.attempt.ListSubmitted)
		}
	}
}
