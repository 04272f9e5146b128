package model

import (
	"context"

	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/function"
	"golang.org/x/crypto/bcrypt"
)

// Account 账户模型
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // 不返回密码
	Nickname string `json:"nickname"`
}

// AccountModel 账户模型操作（密码一律bcrypt落库）
type AccountModel struct {
	base.BaseModel
	DbTag string
}

func NewAccountModel(dbTag string) *AccountModel {
	m := &AccountModel{DbTag: dbTag}
	m.Init()
	return m
}

// GetByUsername 根据用户名查询账户
func (m *AccountModel) GetByUsername(ctx context.Context, username string) (*Account, error) {
	db, err := m.GetMysqlDb(m.DbTag)
	if err != nil {
		return nil, err
	}
	str, err := db.SetTable("account").SetWhere("username = ?", username).Find(ctx)
	if err != nil {
		return nil, err
	}
	if str == "" {
		return nil, ErrNotFound
	}
	var row map[string]interface{}
	if err := function.Json_decode(str, &row); err != nil {
		return nil, err
	}
	return &Account{
		ID:       toInt64(row["id"]),
		Username: toString(row["username"]),
		Password: toString(row["password"]),
		Nickname: toString(row["nickname"]),
	}, nil
}

// Register 注册账户（用户名唯一）
func (m *AccountModel) Register(ctx context.Context, username, password, nickname string) (int64, error) {
	db, err := m.GetMysqlDb(m.DbTag)
	if err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	id, err := db.SetTable("account").Insert(map[string]interface{}{
		"username": username,
		"password": string(hash),
		"nickname": nickname,
	})
	if err != nil {
		return 0, mapMysqlErr(err)
	}
	return id, nil
}

// CheckPassword 验证密码
func (m *AccountModel) CheckPassword(account *Account, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password))
	return err == nil
}
