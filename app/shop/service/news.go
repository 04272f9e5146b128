package service

import (
	"context"
	"strings"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/base"
)

// NewsService 店面资讯服务（mongodb落库）
type NewsService struct {
	base.BaseService
	news     *model.NewsModel
	activity *ActivityService
}

func NewNewsService(news *model.NewsModel, activity *ActivityService) *NewsService {
	s := &NewsService{news: news, activity: activity}
	s.ServiceName = "news"
	s.Init()
	return s
}

// List 最新资讯
func (s *NewsService) List(ctx context.Context, limit int64) ([]model.News, *BizError) {
	if !s.news.Enabled() {
		return []model.News{}, nil
	}
	list, err := s.news.List(ctx, limit)
	if err != nil {
		s.LogError("查询资讯列表失败：", err)
		return nil, InternalErr()
	}
	return list, nil
}

// Create 发布资讯
func (s *NewsService) Create(ctx context.Context, title, content, author string) (string, *BizError) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ValidationErr("资讯标题不能为空")
	}
	if strings.TrimSpace(content) == "" {
		return "", ValidationErr("资讯内容不能为空")
	}
	if strings.TrimSpace(author) == "" {
		author = DefaultUsername
	}
	if !s.news.Enabled() {
		return "", NewBizError(500, "资讯库未启用")
	}
	id, err := s.news.Create(ctx, title, content, author)
	if err != nil {
		s.LogError("发布资讯失败：", err)
		return "", InternalErr()
	}
	s.activity.Push(ActivityNews, author+" 发布了资讯："+title)
	return id, nil
}
