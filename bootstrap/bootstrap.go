package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/db"
	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/logger"
	"github.com/dfpopp/cardmart/websocket"
)

// ServiceType 服务类型枚举
type ServiceType string

const (
	ServiceTypeHTTP ServiceType = "http"
	ServiceTypeWS   ServiceType = "ws"
)

// BootConfig 统一启动配置结构体
type BootConfig struct {
	AppName            string          // 应用名（如shop/admin）
	AppConfigPath      string          // 应用配置文件路径
	DatabaseConfigPath string          // 数据库配置文件路径
	EnableServices     []ServiceType   // 需要启动的服务类型
	Router             base.BaseRouter // 应用路由实例
}

// BootContext 启动上下文（存储已启动的服务）
type BootContext struct {
	HTTPServer *http.Server
	WSServer   *websocket.Server
}

// Boot 统一服务启动入口
func Boot(cfg *BootConfig) (*BootContext, error) {
	// 1. 校验配置
	if cfg.AppName == "" || cfg.AppConfigPath == "" || cfg.DatabaseConfigPath == "" || len(cfg.EnableServices) == 0 || cfg.Router == nil {
		return nil, fmt.Errorf("启动配置不完整，请检查必填参数")
	}

	// 2. 加载配置
	if err := config.LoadAppConfig(cfg.AppConfigPath, cfg.AppName); err != nil {
		return nil, fmt.Errorf("加载应用配置失败: %v", err)
	}
	if err := config.LoadDatabaseConfig(cfg.DatabaseConfigPath); err != nil {
		return nil, fmt.Errorf("加载数据库配置失败: %v", err)
	}
	// 3. 初始化日志
	if err := logger.InitLogger(cfg.AppName); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %v", err)
	}

	// 4. 初始化数据库（按配置文件中实际出现的类型）
	startDb := make([]string, 0)
	if len(config.DbConfig.MySQL) > 0 {
		startDb = append(startDb, "mysql")
	}
	if len(config.DbConfig.Mongodb) > 0 {
		startDb = append(startDb, "mongodb")
	}
	if len(config.DbConfig.Redis) > 0 {
		startDb = append(startDb, "redis")
	}
	if len(startDb) > 0 {
		db.StartDb(startDb)
	}

	// 5. 初始化并启动服务
	bootCtx := &BootContext{}
	var wg sync.WaitGroup

	for _, serviceType := range cfg.EnableServices {
		wg.Add(1)
		switch serviceType {
		case ServiceTypeHTTP:
			bootCtx.HTTPServer = http.NewServer(cfg.AppName)
			cfg.Router.RegisterHTTPRoutes(bootCtx.HTTPServer)
			go func() {
				defer wg.Done()
				if err := bootCtx.HTTPServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP服务启动失败：", err)
				}
			}()
			logger.Info("HTTP服务已初始化，监听地址：", bootCtx.HTTPServer.Config().Addr)
		case ServiceTypeWS:
			bootCtx.WSServer = websocket.NewServer(cfg.AppName)
			cfg.Router.RegisterWSRoutes(bootCtx.WSServer)
			go func() {
				defer wg.Done()
				if err := bootCtx.WSServer.Run(); err != nil && !errors.Is(err, websocket.ErrServerClosed) {
					logger.Error("WebSocket服务启动失败：", err)
				}
			}()
			logger.Info("WebSocket服务已初始化，监听地址：", bootCtx.WSServer.Config().Addr)
		default:
			return nil, fmt.Errorf("未知服务类型: %s", serviceType)
		}
	}

	// 6. 优雅停机监听
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("应用开始优雅停机...")
		if bootCtx.HTTPServer != nil {
			_ = bootCtx.HTTPServer.Stop()
		}
		if bootCtx.WSServer != nil {
			_ = bootCtx.WSServer.Stop()
		}
		if len(startDb) > 0 {
			db.StopDb(startDb)
		}
		logger.Info("应用已完成停机")
	}()

	// 等待所有服务退出
	wg.Wait()
	return bootCtx, nil
}
