package model

import (
	"context"
	"time"

	"github.com/dfpopp/cardmart/base"
	"go.mongodb.org/mongo-driver/bson"
)

// News 资讯模型（店面新闻页，落mongodb）
type News struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

type NewsModel struct {
	base.BaseModel
	DbTag string // mongodb连接标识（空表示未启用资讯）
}

func NewNewsModel(dbTag string) *NewsModel {
	m := &NewsModel{DbTag: dbTag}
	m.Init()
	return m
}

// Enabled 资讯库是否启用
func (m *NewsModel) Enabled() bool {
	return m.DbTag != ""
}

// List 最新资讯列表（按创建时间倒序）
func (m *NewsModel) List(ctx context.Context, limit int64) ([]News, error) {
	db, err := m.GetMongoDb(m.DbTag)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.SetTable("news").
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		FindAll(ctx).
		GetData()
	if err != nil {
		return nil, err
	}
	result := make([]News, 0, len(rows))
	for _, row := range rows {
		item := News{
			Title:     toString(row["title"]),
			Content:   toString(row["content"]),
			Author:    toString(row["author"]),
			CreatedAt: toString(row["created_at"]),
		}
		if oid, ok := row["_id"]; ok {
			item.ID = toString(oid)
			if item.ID == "" {
				// 游标解码出的ObjectID不是字符串类型，走Hex转换
				if hexer, ok := oid.(interface{ Hex() string }); ok {
					item.ID = hexer.Hex()
				}
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// Create 新增资讯
func (m *NewsModel) Create(ctx context.Context, title, content, author string) (string, error) {
	db, err := m.GetMongoDb(m.DbTag)
	if err != nil {
		return "", err
	}
	oid, err := db.SetTable("news").Insert(ctx, bson.D{
		{Key: "title", Value: title},
		{Key: "content", Value: content},
		{Key: "author", Value: author},
		{Key: "created_at", Value: time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}
