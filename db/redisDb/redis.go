package redisDb

import (
	"fmt"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/logger"
	"github.com/go-redis/redis"
)

// 该文件为redis基本操作类，统一从多连接池取客户端
// 全局多数据库连接池
var multiDBPool sync.Map

type RedisDb struct {
	Db    *redis.Client // 复用全局数据库连接池
	DbPre string        // key前缀
}

type DbObj struct {
	Db  *redis.Client
	Pre string
}

// InitRedis 初始化Redis连接池
func InitRedis() {
	cfgMap := config.GetRedisConfig()
	for dbKey, cfg := range cfgMap {
		if cfg.MinIdleConns < 2 {
			cfg.MinIdleConns = 2
		}
		if cfg.PoolSize < 4 {
			cfg.PoolSize = 4
		}
		// 端口默认值（避免配置缺失导致 Addr 格式错误）
		if cfg.Port == "" {
			cfg.Port = "6379"
		}
		redisOpts := &redis.Options{
			Network:  "tcp",
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Pwd, // 空密码直接传入，适配无密码环境
			DB:       0,

			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			IdleTimeout:  300 * time.Second,
			DialTimeout:  5 * time.Second,
		}
		db := redis.NewClient(redisOpts)
		// 测试连接有效性（捕获认证失败、网络不通等错误）
		if pingErr := db.Ping().Err(); pingErr != nil {
			_ = db.Close()
			logger.Error(fmt.Sprintf("Redis 连接失败（dbKey: %s, addr: %s）: %v", dbKey, redisOpts.Addr, pingErr))
			continue
		}
		multiDBPool.Store(dbKey, DbObj{Db: db, Pre: cfg.Pre})
	}
}

func GetRedisDB(dbKey string) (*RedisDb, error) {
	val, ok := multiDBPool.Load(dbKey)
	if !ok {
		return nil, fmt.Errorf("Redis[%s]连接池未初始化", dbKey)
	}
	dbObj, ok := val.(DbObj)
	if !ok {
		return nil, fmt.Errorf("Redis[%s]连接池类型错误", dbKey)
	}
	return &RedisDb{
		Db:    dbObj.Db,
		DbPre: dbObj.Pre,
	}, nil
}

// Key 拼接带前缀的key
func (r *RedisDb) Key(parts ...string) string {
	key := r.DbPre
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// CloseRedis 关闭所有 Redis 连接（供外部调用，如服务停止时）
func CloseRedis() error {
	var err error
	multiDBPool.Range(func(key, value interface{}) bool {
		dbObj, ok := value.(DbObj)
		if !ok {
			err = fmt.Errorf("无效的 Redis 客户端对象（key: %v）", key)
			return false // 终止遍历
		}
		// 关闭客户端（会释放连接池中的所有连接）
		if closeErr := dbObj.Db.Close(); closeErr != nil {
			err = fmt.Errorf("关闭 Redis 连接失败（dbKey: %v）: %w", key, closeErr)
			return true
		}
		fmt.Printf("Redis 连接已关闭（dbKey: %v）\n", key)
		return true
	})
	return err
}
