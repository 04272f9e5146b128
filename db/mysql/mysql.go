package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/function"
	"github.com/dfpopp/cardmart/logger"

	_ "github.com/go-sql-driver/mysql"
)

// 该文件为mysql基本操作类，支持链式操作（SetTable/SetWhere/.../Find）
// 全局多数据库连接池
var multiDBPool sync.Map

// countField 内部计数查询专用字段（绕过标识符校验）
const countField = "COUNT(*) AS count"

type MysqlDb struct {
	Db             *sql.DB // 复用全局数据库连接池
	Tx             *sql.Tx
	DbPre          string // 表前缀
	Table          string
	Alias          string
	whereTemplates []string      // WHERE条件模板列表（如["id = ?", "status = ?"]）
	whereArgs      []interface{} // WHERE条件参数列表（与模板一一对应）
	Order          string
	Group          string
	Field          string
	RelationList   []string
	Limit          string
	Data           []map[string]interface{}
	err            error
}

type DbObj struct {
	Db  *sql.DB
	Pre string
}

// InitMySQL 初始化MySQL连接池
func InitMySQL() {
	cfgMap := config.GetMysqlConfig()
	for dbKey, cfg := range cfgMap {
		db, err := sql.Open("mysql", cfg.User+":"+cfg.Pwd+"@tcp("+cfg.Host+":"+cfg.Port+")/"+cfg.Dbname+"?charset="+cfg.Charset)
		if err != nil {
			logger.Error("MySQL连接失败: " + err.Error())
			continue
		}
		// 设置连接池参数
		cpuNum := runtime.NumCPU()
		if cfg.MaxOpenConnNum <= 0 {
			cfg.MaxOpenConnNum = cpuNum * 3
		}
		if cfg.MaxIdleConnNum <= 0 {
			cfg.MaxIdleConnNum = cpuNum * 2
		}
		if cfg.ConnMaxIdleTime <= 0 {
			cfg.ConnMaxIdleTime = 300
		}
		if cfg.ConnMaxLifetime <= 0 {
			cfg.ConnMaxLifetime = 1800
		}
		db.SetMaxOpenConns(cfg.MaxOpenConnNum)
		db.SetMaxIdleConns(cfg.MaxIdleConnNum)
		db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second) // should < mysql wait_timeout
		if err := db.Ping(); err != nil {
			logger.Error("MySQL Ping失败: " + err.Error())
		}
		multiDBPool.Store(dbKey, DbObj{Db: db, Pre: cfg.Pre})
	}
}

func GetMysqlDB(dbKey string) (*MysqlDb, error) {
	val, ok := multiDBPool.Load(dbKey)
	if !ok {
		return nil, fmt.Errorf("数据库[%s]连接池未初始化", dbKey)
	}
	dbObj, ok := val.(DbObj)
	if !ok {
		return nil, fmt.Errorf("数据库[%s]连接池类型错误", dbKey)
	}
	return &MysqlDb{Db: dbObj.Db, DbPre: dbObj.Pre}, nil
}

// ToBegin 开启事务：多步持久化变更（如商品行+库存流水）必须整体成功或整体回滚
func (db *MysqlDb) ToBegin() error {
	if db.Db == nil {
		return errors.New("数据库连接未初始化")
	}
	tx, err := db.Db.Begin()
	if err != nil {
		return err
	}
	db.Tx = tx
	return nil
}

func (db *MysqlDb) Rollback() error {
	defer db.clearData(true)
	if db.Tx == nil {
		return errors.New("事务未开启")
	}
	err := db.Tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.New("回滚事务失败:" + err.Error())
	}
	return nil
}

func (db *MysqlDb) Commit() error {
	defer db.clearData(true)
	if db.Tx == nil {
		return errors.New("事务未开启")
	}
	return db.Tx.Commit()
}

func (db *MysqlDb) SetTable(table string) *MysqlDb {
	db.Table = db.DbPre + table
	return db
}

func (db *MysqlDb) SetAlias(alias string) *MysqlDb {
	db.Alias = alias
	return db
}

func (db *MysqlDb) SetField(field string) *MysqlDb {
	db.Field = field
	return db
}

func (db *MysqlDb) SetWhere(tpl string, args ...interface{}) *MysqlDb {
	tpl = strings.TrimSpace(tpl)
	if tpl == "" {
		return db
	}

	// 非法关键字拦截（防止恶意注入）
	dangerousKeywords := []string{"DROP", "ALTER", "TRUNCATE", "DELETE", "INSERT", "UPDATE", "EXEC"}
	for _, kw := range dangerousKeywords {
		if strings.Contains(strings.ToUpper(tpl), kw) {
			db.err = fmt.Errorf("条件模板包含非法关键字：%s", kw)
			return db
		}
	}
	db.whereTemplates = append(db.whereTemplates, tpl)
	db.whereArgs = append(db.whereArgs, args...)
	return db
}

func (db *MysqlDb) SetOrder(order string) *MysqlDb {
	db.Order = order
	return db
}

func (db *MysqlDb) SetGroup(group string) *MysqlDb {
	db.Group = group
	return db
}

func (db *MysqlDb) SetJoin(tableName string, condition string, joinType string) *MysqlDb {
	if joinType == "" {
		joinType = "LEFT"
	}
	db.RelationList = append(db.RelationList, joinType+" JOIN "+tableName+" ON "+condition)
	return db
}

func (db *MysqlDb) SetLimit(skip int64, num int64) *MysqlDb {
	if skip < 0 {
		skip = 0
	}
	if num < 0 {
		num = 0
	}
	if num > 1000 {
		num = 1000
	}
	if skip == 0 {
		db.Limit = strconv.FormatInt(num, 10)
	} else {
		db.Limit = strconv.FormatInt(skip, 10) + "," + strconv.FormatInt(num, 10)
	}
	return db
}

func (db *MysqlDb) FindAll(ctx context.Context) *MysqlDb {
	if db.err != nil {
		return db
	}
	if db.Db == nil {
		db.err = errors.New("数据库连接未初始化")
		return db
	}
	if db.Table == "" {
		db.err = errors.New("未指定表名")
		return db
	}
	if !isValidIdentifier(db.Table) {
		db.err = errors.New("表名包含非法字符，存在注入风险")
		return db
	}
	if db.Field == "" {
		db.Field = "*"
	} else if db.Field != countField && !isValidIdentifier(db.Field) {
		db.err = errors.New("查询字段包含非法字符，存在注入风险")
		return db
	}
	sqlStr := "SELECT " + db.Field + " FROM " + db.Table
	if db.Alias != "" {
		if !isValidIdentifier(db.Alias) {
			db.err = errors.New("表别名包含非法字符，存在注入风险")
			return db
		}
		sqlStr += " AS " + db.Alias
	}
	for _, relation := range db.RelationList {
		if !isValidRelation(relation) {
			db.err = errors.New("关联语句格式非法，存在注入风险")
			return db
		}
		sqlStr += " " + relation
	}
	if len(db.whereTemplates) > 0 {
		sqlStr += " WHERE " + strings.Join(db.whereTemplates, " AND ")
	}
	if db.Group != "" {
		if !isValidIdentifier(db.Group) {
			db.err = errors.New("GROUP BY字段包含非法字符，存在注入风险")
			return db
		}
		sqlStr += " GROUP BY " + db.Group
	}
	if db.Order != "" {
		if !isValidOrder(db.Order) {
			db.err = errors.New("ORDER BY字段包含非法字符，存在注入风险")
			return db
		}
		sqlStr += " ORDER BY " + db.Order
	}
	if db.Limit != "" {
		sqlStr += " LIMIT " + db.Limit
	}
	var rows *sql.Rows
	var err error
	if db.Tx != nil {
		rows, err = db.Tx.QueryContext(ctx, sqlStr, db.whereArgs...)
	} else {
		rows, err = db.Db.QueryContext(ctx, sqlStr, db.whereArgs...)
	}
	if err != nil {
		db.err = err
		return db
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Error("关闭结果集失败:", closeErr)
		}
	}()
	cols, er := rows.Columns()
	if er != nil {
		db.err = er
		return db
	}
	// 构造列值的指针切片（用于Scan）
	vals := make([]interface{}, len(cols))
	valPars := make([]interface{}, len(cols))
	for i := range vals {
		valPars[i] = &vals[i]
	}
	var result []map[string]interface{}
	for rows.Next() {
		if err := rows.Scan(valPars...); err != nil {
			db.err = err
			return db
		}
		rowMap := make(map[string]interface{})
		for i, col := range cols {
			// 处理[]uint8为字符串（数据库字符串字段的默认返回值）
			if b, ok := vals[i].([]uint8); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = vals[i]
			}
		}
		result = append(result, rowMap)
	}
	if err := rows.Err(); err != nil {
		db.err = fmt.Errorf("遍历结果集失败: %w", err)
		return db
	}
	db.Data = result
	return db
}

func (db *MysqlDb) FindCount(ctx context.Context) (int64, error) {
	defer db.clearData(false)
	if db.Db == nil {
		return 0, errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	db.Field = countField
	db.Limit = "1"
	db.FindAll(ctx)
	if db.err != nil {
		return 0, db.err
	}
	if len(db.Data) == 0 {
		return 0, nil
	}
	// 安全的类型转换：兼容常见数值类型
	switch v := db.Data[0]["count"].(type) {
	case int64:
		return v, nil
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("转换count字符串失败: %w", err)
		}
		return parsed, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("count字段类型不支持，当前类型：%T", v)
	}
}

func (db *MysqlDb) Find(ctx context.Context) (string, error) {
	defer db.clearData(false)
	if db.Db == nil {
		return "", errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	db.Limit = "1"
	db.FindAll(ctx)
	if db.err != nil {
		return "", db.err
	}
	if len(db.Data) > 0 {
		return function.Json_encode(db.Data[0]), nil
	}
	return "", nil
}

func (db *MysqlDb) Insert(data map[string]interface{}) (int64, error) {
	defer db.clearData(false)
	if db.Db == nil {
		return 0, errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	if len(data) == 0 {
		return 0, errors.New("插入数据不能为空")
	}
	if db.Table == "" {
		return 0, errors.New("未指定表名")
	}
	if !isValidIdentifier(db.Table) {
		return 0, errors.New("表名包含非法字符，存在注入风险")
	}
	var (
		fields       []string
		placeholders []string
		values       []interface{}
	)
	for key, value := range data {
		if !isValidIdentifier(key) {
			return 0, fmt.Errorf("字段名[%s]包含非法字符，存在注入风险", key)
		}
		fields = append(fields, fmt.Sprintf("`%s`", key)) // 字段名加反引号，避免关键字冲突
		placeholders = append(placeholders, "?")
		values = append(values, value)
	}
	sqlStr := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		db.Table, strings.Join(fields, ", "), strings.Join(placeholders, ", "))

	var result sql.Result
	var err error
	if db.Tx != nil {
		result, err = db.Tx.Exec(sqlStr, values...)
	} else {
		result, err = db.Db.Exec(sqlStr, values...)
	}
	if err != nil {
		return 0, fmt.Errorf("执行插入SQL失败，SQL：%s，错误：%w", sqlStr, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取自增ID失败：%w", err)
	}
	return id, nil
}

func (db *MysqlDb) Update(data map[string]interface{}) (int64, error) {
	defer db.clearData(false)
	if db.Db == nil {
		return 0, errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	if len(data) == 0 {
		return 0, errors.New("更新数据不能为空")
	}
	if db.Table == "" {
		return 0, errors.New("未指定表名")
	}
	if !isValidIdentifier(db.Table) {
		return 0, errors.New("表名包含非法字符，存在注入风险")
	}
	// 无条件的全表UPDATE一律拒绝
	if len(db.whereTemplates) == 0 {
		return 0, errors.New("更新操作必须携带WHERE条件")
	}
	var (
		setClauses []string
		values     []interface{}
	)
	for key, value := range data {
		if !isValidIdentifier(key) {
			return 0, fmt.Errorf("更新字段[%s]包含非法字符，存在注入风险", key)
		}
		setClauses = append(setClauses, fmt.Sprintf("`%s`=?", key))
		values = append(values, value)
	}
	sqlStr := fmt.Sprintf("UPDATE `%s` SET %s WHERE %s",
		db.Table, strings.Join(setClauses, ", "), strings.Join(db.whereTemplates, " AND "))
	values = append(values, db.whereArgs...)

	var result sql.Result
	var err error
	if db.Tx != nil {
		result, err = db.Tx.Exec(sqlStr, values...)
	} else {
		result, err = db.Db.Exec(sqlStr, values...)
	}
	if err != nil {
		return 0, fmt.Errorf("执行更新SQL失败，SQL：%s，错误：%w", sqlStr, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取受影响行数失败：%w", err)
	}
	return rowsAffected, nil
}

// Delete 删除记录（必须携带WHERE条件，防止误清全表）
func (db *MysqlDb) Delete() (int64, error) {
	defer db.clearData(false)
	if db.Db == nil {
		return 0, errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	if db.Table == "" {
		return 0, errors.New("未指定表名")
	}
	if !isValidIdentifier(db.Table) {
		return 0, errors.New("表名包含非法字符，存在注入风险")
	}
	if len(db.whereTemplates) == 0 {
		return 0, errors.New("删除操作必须携带WHERE条件")
	}
	sqlStr := fmt.Sprintf("DELETE FROM `%s` WHERE %s",
		db.Table, strings.Join(db.whereTemplates, " AND "))

	var result sql.Result
	var err error
	if db.Tx != nil {
		result, err = db.Tx.Exec(sqlStr, db.whereArgs...)
	} else {
		result, err = db.Db.Exec(sqlStr, db.whereArgs...)
	}
	if err != nil {
		return 0, fmt.Errorf("执行删除SQL失败，SQL：%s，错误：%w", sqlStr, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取受影响行数失败：%w", err)
	}
	return rowsAffected, nil
}

// Exec 执行sql语句，不要依赖用户提交数据，仅执行绝对安全的特殊SQL语句
func (db *MysqlDb) Exec(sqlStr string) (int64, error) {
	if db.Db == nil {
		return 0, errors.New("数据库连接池未初始化（mysql.Db为nil）")
	}
	if len(sqlStr) == 0 {
		return 0, errors.New("Exec需要执行的SQL语句不能为空")
	}
	var result sql.Result
	var err error
	if db.Tx != nil {
		result, err = db.Tx.Exec(sqlStr)
	} else {
		result, err = db.Db.Exec(sqlStr)
	}
	if err != nil {
		return 0, fmt.Errorf("执行Exec的SQL失败，SQL：%s，错误：%w", sqlStr, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("获取受影响行数失败：%w", err)
	}
	return rowsAffected, nil
}

func (db *MysqlDb) ToString() (string, error) {
	defer db.clearData(false)
	if db.err != nil {
		return "", db.err
	}
	if len(db.Data) == 0 {
		return "", nil
	}
	return function.Json_encode(db.Data), nil
}

func (db *MysqlDb) clearData(isClearTx bool) {
	db.Data = nil
	db.Table = ""
	db.Alias = ""
	db.whereTemplates = nil
	db.whereArgs = nil
	db.Order = ""
	db.Group = ""
	db.Field = ""
	db.RelationList = nil
	db.Limit = ""
	db.err = nil
	if isClearTx {
		db.Tx = nil
	}
}

// CloseMysql 关闭所有 mysql 连接（供外部调用，如服务停止时）
func CloseMysql() error {
	var err error
	multiDBPool.Range(func(key, value interface{}) bool {
		dbObj, ok := value.(DbObj)
		if !ok {
			err = fmt.Errorf("无效的 mysql 客户端对象（key: %v）", key)
			return false
		}
		if closeErr := dbObj.Db.Close(); closeErr != nil {
			err = fmt.Errorf("关闭 mysql 连接失败（dbKey: %v）: %w", key, closeErr)
			return true // 继续遍历，尝试关闭其他连接
		}
		fmt.Printf("mysql 连接已关闭（dbKey: %v）\n", key)
		return true
	})
	return err
}
