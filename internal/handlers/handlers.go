package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/middleware"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/service"
	"computing-marketplace/api/internal/validation"
)

type Services struct {
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Inquiries  *service.InquiryService
	Orders     *service.OrderService
	News       *service.NewsService
	Solutions  *service.SolutionService
	Navigation *service.NavigationService
	Dashboard  *service.DashboardService
	Uploads    *service.UploadService
}

// HealthCheck is one dependency checked by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HandlerSet struct {
	log         zerolog.Logger
	environment string
	tokens      *security.TokenIssuer
	limiter     *middleware.RateLimiter
	svc         Services
	checks      []HealthCheck
}

// NewHandlerSet wires the HTTP surface. limiter may be nil to disable rate limiting.
func NewHandlerSet(log zerolog.Logger, environment string, tokens *security.TokenIssuer, svc Services, limiter *middleware.RateLimiter, checks ...HealthCheck) HandlerSet {
	validation.Register()
	return HandlerSet{
		log:         log,
		environment: environment,
		tokens:      tokens,
		limiter:     limiter,
		svc:         svc,
		checks:      checks,
	}
}

func (h HandlerSet) Routes(api *gin.RouterGroup) {
	if h.limiter != nil {
		api.Use(h.limiter.Handler())
	}

	authn := middleware.Authenticate(h.tokens)
	optional := middleware.OptionalAuthenticate(h.tokens)
	admin := middleware.Authorize(models.RoleAdmin)
	staff := middleware.Authorize(models.RoleAdmin, models.RoleSales)

	api.GET("/healthz", h.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.POST("/logout", optional, h.Logout)
		auth.GET("/me", authn, h.Me)
		auth.POST("/change-password", authn, h.ChangePassword)
	}

	products := api.Group("/products")
	{
		products.GET("", optional, h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", authn, admin, h.CreateProduct)
		products.PUT("/:id", authn, admin, h.UpdateProduct)
		products.DELETE("/:id", authn, admin, h.DeleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", optional, h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", authn, admin, h.CreateCategory)
		categories.PUT("/:id", authn, admin, h.UpdateCategory)
		categories.DELETE("/:id", authn, admin, h.DeleteCategory)
	}

	inquiries := api.Group("/inquiries")
	{
		inquiries.POST("", h.SubmitInquiry)
		inquiries.GET("", authn, staff, h.ListInquiries)
		inquiries.GET("/:id", authn, staff, h.GetInquiry)
		inquiries.PATCH("/:id", authn, staff, h.UpdateInquiry)
		inquiries.DELETE("/:id", authn, admin, h.DeleteInquiry)
	}

	orders := api.Group("/orders", authn, staff)
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
	}

	news := api.Group("/news")
	{
		news.GET("", optional, h.ListNews)
		news.GET("/:id", optional, h.GetNews)
		news.POST("", authn, admin, h.CreateNews)
		news.PUT("/:id", authn, admin, h.UpdateNews)
		news.DELETE("/:id", authn, admin, h.DeleteNews)
	}

	solutions := api.Group("/solutions")
	{
		solutions.GET("", optional, h.ListSolutions)
		solutions.GET("/:id", h.GetSolution)
		solutions.POST("", authn, admin, h.CreateSolution)
		solutions.PUT("/:id", authn, admin, h.UpdateSolution)
		solutions.DELETE("/:id", authn, admin, h.DeleteSolution)
	}

	navigation := api.Group("/navigation")
	{
		navigation.GET("", optional, h.NavigationTree)
		navigation.POST("", authn, admin, h.CreateNavigationItem)
		navigation.PUT("/:id", authn, admin, h.UpdateNavigationItem)
		navigation.DELETE("/:id", authn, admin, h.DeleteNavigationItem)
	}

	upload := api.Group("/upload", authn, admin)
	{
		upload.POST("/image", h.UploadImage)
		upload.POST("/images", h.UploadImages)
	}

	dashboard := api.Group("/dashboard", authn, staff)
	{
		dashboard.GET("/stats", h.DashboardStats)
		dashboard.GET("/inquiry-trend", h.InquiryTrend)
		dashboard.GET("/kanban", h.Kanban)
		dashboard.GET("/activity", h.RecentActivity)
	}
}

// respondError is the single place handlers turn an error into a response.
func respondError(c *gin.Context, err error) {
	response.Error(c, err)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, validation.BindError(err))
		return false
	}
	return true
}

func actorID(c *gin.Context) string {
	if id, ok := middleware.CurrentIdentity(c); ok {
		return id.UserID
	}
	return ""
}

func hasRole(c *gin.Context, roles ...models.UserRole) bool {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return false
	}
	for _, role := range roles {
		if models.UserRole(id.Role) == role {
			return true
		}
	}
	return false
}

func pageFrom(c *gin.Context) models.Page {
	return models.Page{
		Number: queryInt(c, "page", 1),
		Size:   queryInt(c, "limit", models.DefaultPageSize),
	}.Normalize()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// splitList accepts repeated keys and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
