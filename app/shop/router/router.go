package router

import (
	"github.com/dfpopp/cardmart/app/shop/controller"
	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/websocket"
)

// ShopRouter 店面路由（实现base.BaseRouter）
// WS服务先于HTTP注册时完成服务装配，HTTP侧复用同一批服务实例
type ShopRouter struct {
	AppName string

	presence *service.PresenceService
	activity *service.ActivityService
	trade    *service.TradeService
	product  *service.ProductService
	news     *service.NewsService
	stats    *service.StatsService
	cache    *model.CacheModel
	account  *model.AccountModel
}

func NewShopRouter(appName string) *ShopRouter {
	return &ShopRouter{AppName: appName}
}

// RegisterWSRoutes 注册WS路由并完成服务装配
func (r *ShopRouter) RegisterWSRoutes(server *websocket.Server) {
	shopCfg := config.GetAppConfig(r.AppName).Shop
	connMgr := server.ConnManager()
	bus := service.NewConnBroadcaster(connMgr)

	// 模型层
	r.cache = model.NewCacheModel(shopCfg.CacheTag)
	r.account = model.NewAccountModel(shopCfg.ProductTag)
	newsModel := model.NewNewsModel(shopCfg.NewsTag)
	var store model.ProductStore
	if shopCfg.StoreDriver == "mysql" {
		store = model.NewMysqlProductStore(shopCfg.ProductTag)
	} else {
		store = model.NewMemoryProductStore()
	}

	// 服务层
	r.presence = service.NewPresenceService(bus)
	r.activity = service.NewActivityService(bus, r.cache)
	r.trade = service.NewTradeService(bus, r.activity, r.cache)
	r.product = service.NewProductService(store, r.cache, bus, r.activity)
	r.news = service.NewNewsService(newsModel, r.activity)
	r.stats = service.NewStatsService(connMgr, r.presence, r.activity, r.trade, r.cache)

	// 连接生命周期：下线即清理
	session := service.NewSessionService(r.presence)
	session.Attach(connMgr.GetEventBus())

	server.Use(websocket.Recovery())

	hallCtrl := controller.NewHallController(r.presence, r.activity, bus, r.cache)
	tradeCtrl := controller.NewTradeController(r.trade, r.presence)
	productCtrl := controller.NewProductController(r.product, r.activity, r.presence, bus)

	server.Register("hall.join", hallCtrl.Join)
	server.Register("chat.send", hallCtrl.Chat)
	server.Register("activity.history", hallCtrl.History)

	server.Register("trade.create", tradeCtrl.Create)
	server.Register("trade.accept", tradeCtrl.Accept)
	server.Register("trade.list", tradeCtrl.List)

	server.Register("product.new", productCtrl.New)
	server.Register("cart.add", productCtrl.CartAdd)
	server.Register("product.create", productCtrl.Create)
	server.Register("product.update", productCtrl.Update)
	server.Register("product.delete", productCtrl.Delete)
	server.Register("price.set", productCtrl.SetPrice)
	server.Register("stock.set", productCtrl.SetStock)
}

// RegisterHTTPRoutes 注册HTTP路由（依赖WS侧装配完成的服务）
func (r *ShopRouter) RegisterHTTPRoutes(server *http.Server) {
	server.Use(http.Recovery())

	statsCtrl := controller.NewStatsController(r.stats)
	shopCtrl := controller.NewShopController(r.product, r.news)
	accountCtrl := controller.NewAccountController(r.account, r.activity)

	server.GET("/api/health", statsCtrl.Health)
	server.GET("/api/stats", statsCtrl.Stats)
	server.GET("/api/products", shopCtrl.Products)
	server.GET("/api/news", shopCtrl.NewsList)
	server.POST("/api/news", shopCtrl.NewsCreate)
	server.POST("/api/account/register", accountCtrl.Register)
	server.POST("/api/account/login", accountCtrl.Login)
}
