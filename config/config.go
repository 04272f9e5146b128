package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// 商城店面服务配置（app.json），按应用名分节加载
type AppConfig struct {
	Name      string          `json:"name"`
	Env       string          `json:"env"` // dev/prod/test
	HTTP      HTTPConfig      `json:"http"`
	WebSocket WebSocketConfig `json:"websocket"`
	Shop      ShopConfig      `json:"shop"`
	Logger    LoggerConfig    `json:"logger"`
}

// HTTPConfig HTTP配置
type HTTPConfig struct {
	Addr           string `json:"addr"`
	ReadTimeout    int    `json:"read_timeout"`
	WriteTimeout   int    `json:"write_timeout"`
	MaxHeaderBytes int    `json:"max_header_bytes"`
	SSL            bool   `json:"ssl"`
	SSLCertFile    string `json:"ssl_cert_file"`
	SSLKeyFile     string `json:"ssl_key_file"`
}

// WebSocketConfig WebSocket服务器配置
type WebSocketConfig struct {
	Addr             string `json:"addr"`              // 监听地址（ip:port）
	ReadTimeout      int    `json:"read_timeout"`      // 读超时（秒）
	WriteTimeout     int    `json:"write_timeout"`     // 写超时（秒）
	Path             string `json:"path"`              // WebSocket监听路径（如：/ws）
	Origin           string `json:"origin"`            // 允许的来源（* 表示允许所有）
	HandshakeTimeout int    `json:"handshake_timeout"` // 握手超时（秒）
	MaxMessageSize   int64  `json:"max_message_size"`  // 最大消息大小（字节，默认1MB）
	MaxConnections   int32  `json:"max_connections"`   // 最大连接数（默认1000）
	SSL              bool   `json:"ssl"`               // 是否启用SSL/TLS（启用后为WSS，禁用为WS）
	SSLCertFile      string `json:"ssl_cert_file"`     // SSL证书路径
	SSLKeyFile       string `json:"ssl_key_file"`      // SSL密钥路径
}

// ShopConfig 店面业务配置
type ShopConfig struct {
	StoreDriver string `json:"store_driver"` // 商品存储后端：memory/mysql
	ProductTag  string `json:"product_tag"`  // 商品库使用的mysql连接标识（默认shop）
	CacheTag    string `json:"cache_tag"`    // 商品缓存使用的redis连接标识（空表示不启用缓存）
	NewsTag     string `json:"news_tag"`     // 资讯库使用的mongodb连接标识（空表示不启用资讯）
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Path string `json:"path"`
}

// DatabaseConfig 数据库配置（database.json）
type DatabaseConfig struct {
	MySQL   map[string]MySQLConfig   `json:"mysql"`
	Mongodb map[string]MongodbConfig `json:"mongodb"`
	Redis   map[string]RedisConfig   `json:"redis"`
}

// MySQLConfig MySQL连接配置
type MySQLConfig struct {
	Host            string `json:"host"`
	Port            string `json:"port"`
	User            string `json:"user"`
	Pwd             string `json:"pwd"`
	Dbname          string `json:"dbname"`
	Charset         string `json:"charset"`
	Pre             string `json:"pre"`
	MaxOpenConnNum  int    `json:"max_open_conn_num"`
	MaxIdleConnNum  int    `json:"max_idle_conn_num"`
	ConnMaxIdleTime int    `json:"conn_max_idleTime"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

// MongodbConfig MongoDB连接配置
type MongodbConfig struct {
	Host            string `json:"host"`
	Port            string `json:"port"`
	User            string `json:"user"`
	Pwd             string `json:"pwd"`
	Dbname          string `json:"dbname"`
	Pre             string `json:"pre"`
	MaxPoolSize     uint64 `json:"max_pool_size"`      // 最大连接池大小
	MinPoolSize     uint64 `json:"min_pool_size"`      // 最小空闲连接数
	MaxConnIdleTime int    `json:"max_conn_idle_time"` // 空闲连接 多少秒后关闭
	Timeout         int    `json:"timeout"`            // 连接超时时间(秒)
}

// RedisConfig redis连接配置
type RedisConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Pwd          string `json:"pwd"`
	Pre          string `json:"pre"`
	Db           int    `json:"db_index"`       // 选中的数据库（默认 0）
	PoolSize     int    `json:"pool_size"`      // 最大连接池大小
	MinIdleConns int    `json:"min_idle_conns"` // 启动阶段创建并长期维持的idle连接数
	IdleTimeout  int    `json:"idle_timeout"`   // 连接池闲置连接超时(秒)
	ReadTimeout  int    `json:"read_timeout"`   // 读取超时(秒)
	WriteTimeout int    `json:"write_timeout"`  // 写入超时(秒)
	Timeout      int    `json:"timeout"`        // 连接超时(秒)
}

type PostLoadHook func() error

var (
	appConfigMap       = make(map[string]*AppConfig)
	DbConfig           *DatabaseConfig
	appConfigOnce      sync.Once
	databaseConfigOnce sync.Once
	postLoadHooks      []PostLoadHook // 存储用户注册的钩子函数
)

// RegisterPostLoadHook 注册配置加载后的钩子函数
func RegisterPostLoadHook(hook PostLoadHook) {
	postLoadHooks = append(postLoadHooks, hook)
}

// LoadAppConfig 单例加载应用配置（使用appConfigOnce）
func LoadAppConfig(filePath string, appNames ...string) error {
	var err error
	appConfigOnce.Do(func() {
		data, readErr := os.ReadFile(filepath.Clean(filePath))
		if readErr != nil {
			err = readErr
			return
		}

		var cfgMap map[string]*AppConfig
		if unmarshalErr := json.Unmarshal(data, &cfgMap); unmarshalErr != nil {
			err = unmarshalErr
			return
		}

		// 加载指定应用配置
		for _, appName := range appNames {
			if cfg, ok := cfgMap[appName]; ok {
				appConfigMap[appName] = cfg
			}
		}
		// 执行配置加载后钩子
		for _, hook := range postLoadHooks {
			if hookErr := hook(); hookErr != nil {
				return
			}
		}
	})
	return err
}

// LoadDatabaseConfig 加载数据库配置
func LoadDatabaseConfig(filePath string) error {
	var err error
	databaseConfigOnce.Do(func() {
		data, readErr := os.ReadFile(filepath.Clean(filePath))
		if readErr != nil {
			err = readErr
			return
		}

		var cfg DatabaseConfig
		if unmarshalErr := json.Unmarshal(data, &cfg); unmarshalErr != nil {
			err = unmarshalErr
			return
		}

		DbConfig = &cfg
	})
	return err
}

// GetAppConfig 获取应用配置
func GetAppConfig(appName string) *AppConfig {
	return appConfigMap[appName]
}

// GetDatabaseConfig 获取数据库配置
func GetDatabaseConfig() *DatabaseConfig {
	return DbConfig
}

// GetMysqlConfig 获取mysql数据库配置
func GetMysqlConfig() map[string]MySQLConfig {
	return DbConfig.MySQL
}

// GetMongodbConfig 获取mongodb数据库配置
func GetMongodbConfig() map[string]MongodbConfig {
	return DbConfig.Mongodb
}

// GetRedisConfig 获取redis数据库配置
func GetRedisConfig() map[string]RedisConfig {
	return DbConfig.Redis
}
