package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/response"
)

// AccountController 账户接口（HTTP侧，密码bcrypt落库）
type AccountController struct {
	account  *model.AccountModel
	activity *service.ActivityService
}

func NewAccountController(account *model.AccountModel, activity *service.ActivityService) *AccountController {
	return &AccountController{account: account, activity: activity}
}

// Register 注册账户
func (c *AccountController) Register(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "请求体格式错误")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		bc.Error(response.CodeValidation, "用户名或密码不能为空")
		return
	}
	id, err := c.account.Register(context.Background(), username, req.Password, req.Nickname)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			bc.Error(response.CodeConflict, "用户名已存在")
			return
		}
		bc.InternalError()
		return
	}
	c.activity.Push(service.ActivityAccount, username+" 注册了账户")
	bc.Success(map[string]interface{}{"id": id, "username": username})
}

// Login 登录
func (c *AccountController) Login(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "请求体格式错误")
		return
	}
	if req.Username == "" || req.Password == "" {
		bc.Error(response.CodeValidation, "用户名或密码不能为空")
		return
	}
	account, err := c.account.GetByUsername(context.Background(), req.Username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			bc.Error(response.CodeNotFound, "用户名不存在")
			return
		}
		bc.InternalError()
		return
	}
	if !c.account.CheckPassword(account, req.Password) {
		bc.Error(response.CodeForbidden, "密码错误")
		return
	}
	bc.Success(account)
}
