package mongoDb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/function"
	"github.com/dfpopp/cardmart/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Db MongoDB操作类，支持链式调用
type Db struct {
	Client      *mongo.Client            // MongoDB客户端
	Db          *mongo.Database          // 当前数据库
	DbPre       string                   // 集合前缀
	Collection  string                   // 当前集合名
	Filter      bson.D                   // 查询条件
	FindOptions *options.FindOptions     // 查询选项
	Sort        bson.D                   // 排序条件
	Skip        int64                    // 跳过条数
	Limit       int64                    // 限制条数
	Projection  bson.D                   // 字段投影（只返回指定字段）
	Data        []map[string]interface{} // 查询结果
	Err         error                    // 错误存储
}

type DbObj struct {
	Client *mongo.Client
	DbName string
	Pre    string
}

var multiClientPool sync.Map

// InitMongoDB 初始化MongoDB连接池，支持多配置
func InitMongoDB() {
	cfgMap := config.GetMongodbConfig()
	for dbKey, cfg := range cfgMap {
		client, err := connect(cfg)
		if err != nil {
			logger.Error(fmt.Sprintf("MongoDB连接初始化失败（%s）: %v", dbKey, err))
		} else {
			multiClientPool.Store(dbKey, DbObj{Client: client, DbName: cfg.Dbname, Pre: cfg.Pre})
		}
	}
}

// connect 建立MongoDB连接
func connect(cfg config.MongodbConfig) (*mongo.Client, error) {
	// 默认配置
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "27017"
	}
	cpuNum := runtime.NumCPU()
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = uint64(cpuNum) * 3
	}
	if cfg.MinPoolSize == 0 {
		cfg.MinPoolSize = uint64(cpuNum)
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 300 //5分钟
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5
	}
	// 构建连接URI
	var uri string
	if cfg.Pwd != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s/?connect=direct", cfg.User, cfg.Pwd, cfg.Host, cfg.Port)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%s/?connect=direct", cfg.Host, cfg.Port)
	}
	clientOpts := options.Client().ApplyURI(uri)
	clientOpts.SetCompressors([]string{"snappy"})
	clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	clientOpts.SetMinPoolSize(cfg.MinPoolSize)
	clientOpts.SetMaxConnIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Second)
	clientOpts.SetConnectTimeout(time.Duration(cfg.Timeout) * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	// 校验连接
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

// GetMongoDB 获取MongoDB操作实例
func GetMongoDB(dbKey string) (*Db, error) {
	val, ok := multiClientPool.Load(dbKey)
	if !ok {
		return nil, fmt.Errorf("MongoDB连接池[%s]未初始化", dbKey)
	}
	dbObj, ok := val.(DbObj)
	if !ok {
		return nil, fmt.Errorf("MongoDB连接池[%s]类型错误", dbKey)
	}
	return &Db{
		Client:      dbObj.Client,
		Db:          dbObj.Client.Database(dbObj.DbName),
		DbPre:       dbObj.Pre,
		FindOptions: options.Find(),
	}, nil
}

// SetTable 设置操作的集合名
func (m *Db) SetTable(col string) *Db {
	if m.Err != nil {
		return m
	}
	m.Collection = m.DbPre + col
	return m
}

// SetWhere 设置查询条件（bson.D）
func (m *Db) SetWhere(filter bson.D) *Db {
	if m.Err != nil {
		return m
	}
	m.Filter = filter
	return m
}

// SetSort 设置排序条件（如bson.D{{"_id", -1}}）
func (m *Db) SetSort(sort bson.D) *Db {
	if m.Err != nil {
		return m
	}
	m.Sort = sort
	m.FindOptions.SetSort(sort)
	return m
}

// SetLimit 设置查询条数限制
func (m *Db) SetLimit(limit int64) *Db {
	if m.Err != nil {
		return m
	}
	m.Limit = limit
	m.FindOptions.SetLimit(limit)
	return m
}

// SetSkip 设置跳过条数
func (m *Db) SetSkip(skip int64) *Db {
	if m.Err != nil {
		return m
	}
	m.Skip = skip
	m.FindOptions.SetSkip(skip)
	return m
}

// SetProjection 设置字段投影（指定返回/排除的字段）
func (m *Db) SetProjection(proj bson.D) *Db {
	if m.Err != nil {
		return m
	}
	m.Projection = proj
	m.FindOptions.SetProjection(proj)
	return m
}

// FindAll 执行查询，返回多条结果
func (m *Db) FindAll(ctx context.Context) *Db {
	if m.Err != nil {
		return m
	}
	if m.Collection == "" {
		m.Err = errors.New("未指定集合名")
		return m
	}
	coll := m.Db.Collection(m.Collection)
	filter := m.Filter
	if filter == nil {
		filter = bson.D{}
	}
	cursor, err := coll.Find(ctx, filter, m.FindOptions)
	if err != nil {
		m.Err = fmt.Errorf("查询失败: %v", err)
		return m
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		closeErr := cursor.Close(ctx)
		if closeErr != nil {
			logger.Error("mongoDb 关闭结果集失败：", closeErr)
		}
	}(cursor, ctx)
	var result []map[string]interface{}
	for cursor.Next(ctx) {
		var doc map[string]interface{}
		if err := cursor.Decode(&doc); err != nil {
			m.Err = fmt.Errorf("解析文档失败: %v", err)
			return m
		}
		result = append(result, doc)
	}
	if err := cursor.Err(); err != nil {
		m.Err = fmt.Errorf("游标遍历失败: %v", err)
		return m
	}
	m.Data = result
	return m
}

// FindCount 统计符合条件的文档数
func (m *Db) FindCount(ctx context.Context) (int64, error) {
	defer m.clearData()
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Collection == "" {
		return 0, errors.New("未指定集合名")
	}
	coll := m.Db.Collection(m.Collection)
	filter := m.Filter
	if filter == nil {
		filter = bson.D{}
	}
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		m.Err = fmt.Errorf("计数失败: %v", err)
		return 0, m.Err
	}
	return count, nil
}

// Find 执行查询，返回单条结果
func (m *Db) Find(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Db == nil {
		return "", errors.New("数据库资源不存在")
	}
	if m.Collection == "" {
		return "", errors.New("未指定集合名")
	}
	defer m.clearData()
	m.SetLimit(1)
	m.FindAll(ctx)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Data) > 0 {
		return function.Json_encode(m.Data[0]), nil
	}
	return "", nil
}

// Insert 插入单条文档
func (m *Db) Insert(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	defer m.clearData()
	if m.Err != nil {
		return primitive.NilObjectID, m.Err
	}
	if m.Collection == "" {
		return primitive.NilObjectID, errors.New("未指定集合名")
	}
	if doc == nil {
		return primitive.NilObjectID, errors.New("插入文档不能为空")
	}
	coll := m.Db.Collection(m.Collection)
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		m.Err = fmt.Errorf("插入失败: %v", err)
		return primitive.NilObjectID, m.Err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		m.Err = errors.New("插入ID不是ObjectID类型")
		return primitive.NilObjectID, m.Err
	}
	return oid, nil
}

// UpdateOne 更新单条文档
func (m *Db) UpdateOne(ctx context.Context, update bson.D) (int64, error) {
	defer m.clearData()
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Collection == "" {
		return 0, errors.New("未指定集合名")
	}
	if len(update) == 0 {
		return 0, errors.New("更新条件不能为空")
	}
	if len(m.Filter) == 0 {
		return 0, errors.New("查询条件不能为空（防止全表更新）")
	}
	coll := m.Db.Collection(m.Collection)
	res, err := coll.UpdateOne(ctx, m.Filter, update)
	if err != nil {
		m.Err = fmt.Errorf("更新单条失败: %v", err)
		return 0, m.Err
	}
	return res.ModifiedCount, nil
}

// DeleteOne 删除单条文档
func (m *Db) DeleteOne(ctx context.Context) (int64, error) {
	defer m.clearData()
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Collection == "" {
		return 0, errors.New("未指定集合名")
	}
	if len(m.Filter) == 0 {
		return 0, errors.New("查询条件不能为空")
	}
	coll := m.Db.Collection(m.Collection)
	res, err := coll.DeleteOne(ctx, m.Filter)
	if err != nil {
		m.Err = fmt.Errorf("删除单条失败: %v", err)
		return 0, m.Err
	}
	return res.DeletedCount, nil
}

// ToString 返回结果的字符串形式和错误
func (m *Db) ToString() (string, error) {
	defer m.clearData()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Data) == 0 {
		return "", nil
	}
	return function.Json_encode(m.Data), nil
}

// clearData 清理查询数据和临时配置
func (m *Db) clearData() {
	m.Collection = ""
	m.Filter = nil
	m.FindOptions = options.Find()
	m.Sort = nil
	m.Limit = 0
	m.Skip = 0
	m.Projection = nil
	m.Data = nil
	m.Err = nil
}

// CloseMongoDb 关闭所有 mongoDb 连接（供外部调用，如服务停止时）
func CloseMongoDb() error {
	var err error
	multiClientPool.Range(func(key, value interface{}) bool {
		dbObj, ok := value.(DbObj)
		if !ok {
			err = fmt.Errorf("无效的 mongoDb 客户端对象（key: %v）", key)
			return false // 终止遍历
		}
		disconnectCtx := context.Background()
		if closeErr := dbObj.Client.Disconnect(disconnectCtx); closeErr != nil {
			err = fmt.Errorf("关闭 mongoDb 连接失败（dbKey: %v）: %w", key, closeErr)
			return true // 继续遍历，尝试关闭其他连接
		}
		fmt.Printf("mongoDb 连接已关闭（dbKey: %v）\n", key)
		return true
	})
	return err
}
