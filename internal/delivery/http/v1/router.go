package v1

import (
	"net/http"
	"strings"

	"salon-booking-backend/config"
	"salon-booking-backend/internal/delivery/http/middleware"
	"salon-booking-backend/internal/delivery/http/response"
	"salon-booking-backend/internal/domain"
	"salon-booking-backend/internal/usecase"
	"salon-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	SubmissionUC domain.SubmissionUsecase
	HealthUC     usecase.HealthUsecase
	Config       *config.Config
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Only honor X-Forwarded-For from configured proxies
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		return nil, err
	}
	response.LoadTemplates(r)

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins, deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	// The strict CSP is for the pages this service renders itself; the
	// swagger UI needs its own scripts.
	secure := middleware.SecurityHeadersMiddleware()

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC.Check(c.Request.Context())["status"] != "ok" {
			response.Status(c, http.StatusOK, response.StatusOK, "Mail delivery not configured")
			return
		}
		response.Status(c, http.StatusOK, response.StatusOK, "System operational")
	})

	// Public routes
	NewSubmissionHandler(v1.Group("", secure), r.Group("", secure), deps.SubmissionUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoMethod(secure, func(c *gin.Context) {
		c.Header("Allow", allowedMethods(r.Routes(), c.Request.URL.Path))
		c.Error(apperror.MethodNotAllowed())
	})
	r.NoRoute(secure, func(c *gin.Context) {
		c.Error(apperror.NotFound("Not found."))
	})

	return r, nil
}

func allowedMethods(routes gin.RoutesInfo, path string) string {
	var methods []string
	for _, route := range routes {
		if route.Path == path {
			methods = append(methods, route.Method)
		}
	}
	return strings.Join(methods, ", ")
}
