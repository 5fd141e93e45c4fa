package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt 只接受不超过 72 字节的密码
	maxPasswordBytes = 72
)

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return validationError("密码长度不能少于%d位", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return validationError("密码长度不能超过%d字节", maxPasswordBytes)
	}
	return nil
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Currency string // 为空时使用系统默认币种
}

// AccountService 账号服务：注册、登录、个人信息
type AccountService struct {
	users           store.UserStore
	defaultCurrency string
}

// NewAccountService 创建账号服务
func NewAccountService(users store.UserStore, defaultCurrency string) *AccountService {
	return &AccountService{users: users, defaultCurrency: defaultCurrency}
}

// Register 注册新用户，密码以 bcrypt 哈希保存
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, validationError("用户名长度需在3到50个字符之间")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("邮箱格式不正确")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	currency := in.Currency
	if strings.TrimSpace(currency) == "" {
		currency = s.defaultCurrency
	}
	// 借助 Money 的币种校验规则
	money, err := models.NewMoney(decimal.Zero, currency)
	if err != nil {
		return nil, moneyError(err)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "用户", "查询用户")
	}
	if exists {
		return nil, conflictError("用户名已存在")
	}
	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "用户", "查询用户")
	}
	if exists {
		return nil, conflictError("邮箱已被注册")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Currency: money.CurrencyCode(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictError("用户名或邮箱已存在")
		}
		return nil, storeError(err, "用户", "创建用户")
	}
	return user, nil
}

// Login 用户名或邮箱登录；用户不存在与密码错误返回同一个错误
func (s *AccountService) Login(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, store.ErrNotFound) {
		return nil, &Error{Kind: ErrInvalidCredentials, Message: "用户名或密码错误"}
	}
	if err != nil {
		return nil, storeError(err, "用户", "查询用户")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &Error{Kind: ErrInvalidCredentials, Message: "用户名或密码错误"}
	}
	return user, nil
}

// Current 当前登录用户
func (s *AccountService) Current(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "用户", "查询用户")
	}
	return user, nil
}

// ChangePassword 校验原密码后修改密码
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Current(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return &Error{Kind: ErrInvalidCredentials, Message: "原密码错误"}
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return storeError(s.users.UpdatePassword(ctx, user, string(hashed)), "用户", "修改密码")
}
