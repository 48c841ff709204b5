package routes

import (
	"restaurant/configs"
	"restaurant/controllers"
	"restaurant/middlewares"
	"restaurant/repository"
	"restaurant/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps is the application context handed to the router; nothing here is
// process-global.
type Deps struct {
	DB     *gorm.DB
	Config *configs.Config
	Log    zerolog.Logger
}

// App exposes the wired services alongside the engine.
type App struct {
	Engine *gin.Engine
	Auth   *services.AuthService
	Menu   *services.MenuService
	Cart   *services.CartService
}

func NewApp(d Deps) *App {
	cfg := d.Config

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	menuRepo := repository.NewMenuRepository(d.DB)
	cartRepo := repository.NewCartRepository(d.DB)
	sessionRepo := repository.NewSessionRepository(d.DB)

	// Services
	creds := services.NewCredentialService(cfg.BcryptCost)
	authSvc := services.NewAuthService(userRepo, sessionRepo, creds, services.AuthOptions{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Admin: services.AdminCredential{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
		},
		Log: &d.Log,
	})
	menuSvc := services.NewMenuService(d.DB, menuRepo, cartRepo, services.DeletePolicy(cfg.MenuDeletePolicy))
	cartSvc := services.NewCartService(d.DB, cartRepo, menuRepo)

	cookie := middlewares.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}
	metrics := middlewares.NewMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(metrics.Middleware())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.LoadSession(authSvc, cookie, d.Log))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", metrics.Handler())
	r.Static("/uploads", cfg.UploadDir)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc, cookie, d.Log)
	menuCtrl := controllers.NewMenuController(menuSvc)
	adminCtrl := controllers.NewAdminController(menuSvc, userRepo, cfg.UploadDir)
	cartCtrl := controllers.NewCartController(cartSvc)

	// Public
	r.GET("/", authCtrl.LoginPage)
	r.POST("/", authCtrl.Login)
	r.GET("/register", authCtrl.RegisterPage)
	r.POST("/register", authCtrl.Register)
	r.GET("/home", menuCtrl.Home)
	r.GET("/admin/login", authCtrl.AdminLoginPage)
	r.POST("/admin/login", authCtrl.AdminLogin)

	// Any authenticated principal
	r.GET("/logout", middlewares.RequireAuthenticated("/"), authCtrl.Logout)
	r.GET("/admin/home", middlewares.RequireAuthenticated("/admin/login"), authCtrl.AdminHome)
	r.GET("/admin/logout", middlewares.RequireAuthenticated("/admin/login"), authCtrl.AdminLogout)

	// Cart (user-backed principals)
	cart := r.Group("/cart", middlewares.RequireUser("/"))
	{
		cart.GET("", cartCtrl.Get)
		cart.POST("/add", cartCtrl.Add)
		cart.POST("/update/:id", cartCtrl.UpdateQty)
		cart.POST("/remove/:id", cartCtrl.RemoveItem)
		cart.POST("/clear", cartCtrl.Clear)
	}

	// Admin only
	admin := r.Group("/admin", middlewares.RequireAdmin("/admin/login"))
	{
		admin.GET("", adminCtrl.Dashboard)
		admin.GET("/add_menu_item", adminCtrl.AddMenuItemPage)
		admin.POST("/add_menu_item", adminCtrl.AddMenuItem)
		admin.GET("/edit_menu_item/:id", adminCtrl.EditMenuItemPage)
		admin.POST("/edit_menu_item/:id", adminCtrl.EditMenuItem)
		admin.POST("/delete_menu_item/:id", adminCtrl.DeleteMenuItem)
	}

	return &App{Engine: r, Auth: authSvc, Menu: menuSvc, Cart: cartSvc}
}
