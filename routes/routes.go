package routes

import (
	"log/slog"
	"net/http"

	"littlelemon/configs"
	"littlelemon/controllers"
	"littlelemon/events"
	"littlelemon/middlewares"
	"littlelemon/policy"
	"littlelemon/repository"
	"littlelemon/services"
	"littlelemon/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived pieces main builds before routing.
type Deps struct {
	DB     *gorm.DB
	Config *configs.Config
	Log    *slog.Logger

	// Auth resolves tokens; built from DB and Config when nil. main shares it
	// with the websocket hub.
	Auth *services.AuthService
	// MenuRepo replaces the plain gorm menu repository, e.g. with the redis
	// cache. Optional.
	MenuRepo repository.MenuItemRepository
	// Events receives order events besides the websocket hub. Optional.
	Events events.Publisher
	// Hub serves /ws/orders. Optional.
	Hub *ws.OrderHub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	cartRepo := repository.NewCartRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	categoryRepo := repository.NewCategoryRepository(d.DB)
	var menuRepo repository.MenuItemRepository = repository.NewMenuRepository(d.DB)
	if d.MenuRepo != nil {
		menuRepo = d.MenuRepo
	}

	publishers := events.Multi{}
	if d.Hub != nil {
		publishers = append(publishers, d.Hub)
	}
	if d.Events != nil {
		publishers = append(publishers, d.Events)
	}

	// Services
	authSvc := d.Auth
	if authSvc == nil {
		authSvc = services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	}
	menuSvc := services.NewMenuService(menuRepo)
	categorySvc := services.NewCategoryService(categoryRepo)
	groupSvc := services.NewGroupService(userRepo)
	cartSvc := services.NewCartService(d.DB, cartRepo)
	orderSvc := services.NewOrderService(d.DB, orderRepo, cartRepo, userRepo,
		publishers, configs.CheckoutTxOptions(cfg), d.Log)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc)
	menuCtrl := controllers.NewMenuController(menuSvc)
	categoryCtrl := controllers.NewCategoryController(categorySvc)
	managerCtrl := controllers.NewGroupController(groupSvc, policy.GroupManager)
	crewCtrl := controllers.NewGroupController(groupSvc, policy.GroupDeliveryCrew)
	cartCtrl := controllers.NewCartController(cartSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// every route below resolves the caller; the services decide what it may do
	api := r.Group("/", middlewares.Authenticate(authSvc))

	// Auth
	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	api.POST("/auth/users/", limiter.Limit(), authCtrl.Register)
	api.POST("/auth/token/login/", limiter.Limit(), authCtrl.Login)
	api.GET("/auth/users/me/", authCtrl.Me)

	// Catalog
	api.GET("/categories/", categoryCtrl.List)
	api.POST("/categories/", categoryCtrl.Create)
	api.DELETE("/categories/:id/", categoryCtrl.Delete)

	api.GET("/menu-items/", menuCtrl.List)
	api.POST("/menu-items/", menuCtrl.Create)
	api.GET("/menu-items/:id/", menuCtrl.Get)
	api.PUT("/menu-items/:id/", menuCtrl.Replace)
	api.PATCH("/menu-items/:id/", menuCtrl.Patch)
	api.DELETE("/menu-items/:id/", menuCtrl.Delete)

	// Staff groups
	api.GET("/groups/manager/users/", managerCtrl.List)
	api.POST("/groups/manager/users/", managerCtrl.Add)
	api.DELETE("/groups/manager/users/:id/", managerCtrl.Remove)
	api.GET("/groups/delivery-crew/users/", crewCtrl.List)
	api.POST("/groups/delivery-crew/users/", crewCtrl.Add)
	api.DELETE("/groups/delivery-crew/users/:id/", crewCtrl.Remove)

	// Cart
	api.GET("/cart/menu-items/", cartCtrl.List)
	api.POST("/cart/menu-items/", cartCtrl.Add)
	api.DELETE("/cart/menu-items/", cartCtrl.Clear)

	// Orders
	api.GET("/orders/", orderCtrl.List)
	api.POST("/orders/", orderCtrl.Checkout)
	api.GET("/orders/:id/", orderCtrl.Get)
	api.PUT("/orders/:id/", orderCtrl.Update)
	api.PATCH("/orders/:id/", orderCtrl.Update)
	api.DELETE("/orders/:id/", orderCtrl.Delete)

	// Live order status
	if d.Hub != nil {
		api.GET("/ws/orders", d.Hub.HandleWebSocket)
	}
}
