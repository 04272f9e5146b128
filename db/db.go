package db

import (
	"fmt"
	"sync"

	"github.com/dfpopp/cardmart/db/mongoDb"
	"github.com/dfpopp/cardmart/db/mysql"
	"github.com/dfpopp/cardmart/db/redisDb"
	"github.com/dfpopp/cardmart/function"
)

// StartDb 按类型初始化数据库连接池
func StartDb(dbTypeList []string) {
	for _, dbType := range dbTypeList {
		switch dbType {
		case "mysql":
			mysql.InitMySQL()
		case "mongodb":
			mongoDb.InitMongoDB()
		case "redis":
			redisDb.InitRedis()
		}
	}
}

// StopDb 关闭所有已初始化的数据库连接（服务停止时调用）
func StopDb(dbTypeList []string) {
	var wg sync.WaitGroup
	if function.InArray("mysql", dbTypeList) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mysql.CloseMysql(); err != nil {
				fmt.Printf("Mysql 连接关闭失败: %v\n", err)
			}
		}()
	}
	if function.InArray("mongodb", dbTypeList) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mongoDb.CloseMongoDb(); err != nil {
				fmt.Printf("MongoDb 连接关闭失败: %v\n", err)
			}
		}()
	}
	if function.InArray("redis", dbTypeList) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := redisDb.CloseRedis(); err != nil {
				fmt.Printf("Redis 连接关闭失败: %v\n", err)
			}
		}()
	}
	wg.Wait()
}
