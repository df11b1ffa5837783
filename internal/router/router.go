package router

import (
	"time"

	"github.com/leodymann/wi-api/internal/config"
	"github.com/leodymann/wi-api/internal/handler"
	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/middleware"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/repository"
	"github.com/leodymann/wi-api/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: public ids are then only checked against the database and
// rate limits are kept per process.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var counter middleware.Counter = middleware.NewMemoryCounter()
	var reserver service.IDReserver
	if rdb != nil {
		counter = middleware.NewRedisCounter(rdb)
		reserver = infra.NewIDReserver(rdb, 5*time.Minute)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.APIRateLimiter(counter, 1000)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	promissoryRepo := repository.NewPromissoryRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	clientSvc := service.NewClientService(clientRepo)
	productSvc := service.NewProductService(productRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, clientRepo, promissoryRepo, reserver, nil)
	promissorySvc := service.NewPromissoryService(promissoryRepo, installmentRepo, clientRepo, productRepo, reserver, nil)
	installmentSvc := service.NewInstallmentService(installmentRepo, promissoryRepo, saleRepo, cfg.Location(), nil)
	financeSvc := service.NewFinanceService(financeRepo, nil)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	promissoriesH := handler.NewPromissoriesHandler(promissorySvc)
	installmentsH := handler.NewInstallmentsHandler(installmentSvc)
	financeH := handler.NewFinanceHandler(financeSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(handler.DBPinger(db), handler.RedisPinger(rdb)))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(counter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes; ADMIN and STAFF unless the group says otherwise
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
		}

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.POST("/:id/images", productsH.AddImage)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.PATCH("/:id/status", salesH.UpdateStatus)
		}

		prom := v1.Group("/promissories")
		{
			prom.POST("", promissoriesH.Create)
			prom.GET("", promissoriesH.List)
			prom.GET("/:id", promissoriesH.Get)
			prom.POST("/:id/issue", promissoriesH.Issue)
			prom.PATCH("/:id/cancel", promissoriesH.Cancel)
		}

		inst := v1.Group("/installments")
		{
			inst.GET("", installmentsH.List)
			inst.POST("/:id/pay", installmentsH.Pay)
		}

		fin := v1.Group("/finance", middleware.RequireRole(model.RoleAdmin))
		{
			fin.POST("", financeH.Create)
			fin.GET("", financeH.List)
			fin.GET("/:id", financeH.Get)
			fin.PUT("/:id", financeH.Update)
			fin.POST("/:id/pay", financeH.Pay)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
