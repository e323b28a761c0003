package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/controllers"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/middlewares"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Antes do registro das rotas: Use depois de registrar não pega nada
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerController(db)
	productCtrl := controllers.NewProductController(db)
	tabCtrl := controllers.NewTabController(db)
	stockCtrl := controllers.NewStockController(db)

	// ----------------------------------------------------------------
	//                      ROTAS PÚBLICAS
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Cardápio é consulta livre (telão do bar)
	r.GET("/produtos", productCtrl.GetAllProducts)
	r.GET("/produtos/:product_id", productCtrl.GetProductByID)

	// ----------------------------------------------------------------
	//                      ROTAS AUTENTICADAS
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)

	// CLIENTES (garçom/caixa/admin)
	auth.GET("/clientes", customerCtrl.GetAllCustomers)
	auth.POST("/clientes", customerCtrl.CreateCustomer)
	auth.GET("/clientes/:customer_id", customerCtrl.GetCustomerByID)
	auth.PATCH("/clientes/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/clientes/:customer_id",
		middlewares.RequireRoles(), customerCtrl.DeleteCustomer)

	// COMANDAS — o coração do sistema
	auth.GET("/comandas", tabCtrl.GetAllTabs)
	auth.POST("/comandas", tabCtrl.OpenTab)
	auth.GET("/comandas/:tab_id", tabCtrl.GetTabByID)
	auth.POST("/comandas/:tab_id/itens", tabCtrl.AddItem)
	auth.DELETE("/comandas/:tab_id/itens/:item_id", tabCtrl.RemoveItem)
	auth.POST("/comandas/:tab_id/fechar", tabCtrl.CloseTab)
	auth.POST("/comandas/:tab_id/pagar-parcial", tabCtrl.SettlePartial)
	auth.GET("/comandas/:tab_id/pix", tabCtrl.GetPixCode)
	auth.DELETE("/comandas/:tab_id", tabCtrl.DeleteTab)

	// PRODUTOS (escrita: caixa/admin)
	caixa := auth.Group("/")
	caixa.Use(middlewares.RequireRoles(models.RoleCashier))
	{
		caixa.POST("/produtos", productCtrl.CreateProduct)
		caixa.PATCH("/produtos/:product_id", productCtrl.UpdateProduct)
		caixa.DELETE("/produtos/:product_id", productCtrl.DeleteProduct)

		// ESTOQUE
		caixa.POST("/produtos/:product_id/estoque", stockCtrl.AdjustStock)
		caixa.GET("/produtos/:product_id/movimentacoes", stockCtrl.GetMovements)
		caixa.GET("/estoque/baixo", stockCtrl.GetLowStock)
	}

	// Painel em tempo real (bar/caixa/admin)
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/painel", controllers.EventsHandler)
	}

	return r
}
