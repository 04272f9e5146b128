package main

import (
	"fmt"
	"os"

	"github.com/dfpopp/cardmart/app/shop/router"
	"github.com/dfpopp/cardmart/bootstrap"
)

const appName = "shop"

func main() {
	// WS服务在前：HTTP路由依赖WS侧完成的服务装配
	_, err := bootstrap.Boot(&bootstrap.BootConfig{
		AppName:            appName,
		AppConfigPath:      "config/app.json",
		DatabaseConfigPath: "config/database.json",
		EnableServices:     []bootstrap.ServiceType{bootstrap.ServiceTypeWS, bootstrap.ServiceTypeHTTP},
		Router:             router.NewShopRouter(appName),
	})
	if err != nil {
		fmt.Println("服务启动失败:", err)
		os.Exit(1)
	}
}
