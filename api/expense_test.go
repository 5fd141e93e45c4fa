package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expenseColumns = []string{"id", "user_id", "category_id", "amount", "currency_code", "date", "note", "created_at", "updated_at"}

func setUserIDMiddleware(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func TestExpenseHandler_Create(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()

	// 类别已存在
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(userID.String(), "餐饮").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(uuid.New().String(), userID.String(), "餐饮", time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.POST("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).Create)

	w := postJSON(router, "/expenses", `{"amount":99.99,"currency_code":"pln","category_name":"餐饮","note":"午餐","date":"2024-01-15 12:30:00"}`)

	assert.Equal(t, 201, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/api/v1/expenses/"))
	resp := decodeResponse(t, w)
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "餐饮", data["category_name"])
	assert.Equal(t, "PLN", data["currency_code"])
	assert.Equal(t, "99.99", data["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_DefaultCurrency(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()

	// 未指定币种时读取账号默认币种
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "u1", "u1@x.com", "hash", "EUR", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(userID.String(), "交通").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(uuid.New().String(), userID.String(), "交通", time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.POST("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).Create)

	w := postJSON(router, "/expenses", `{"amount":12.5,"category_name":"交通"}`)

	assert.Equal(t, 201, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "EUR", data["currency_code"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_InvalidAmount(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.POST("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).Create)

	for _, body := range []string{
		`{"amount":0,"currency_code":"PLN","category_name":"餐饮"}`,
		`{"amount":-5,"currency_code":"PLN","category_name":"餐饮"}`,
		`{"amount":5,"currency_code":"PLN","category_name":"餐饮","date":"15/01/2024"}`,
	} {
		w := postJSON(router, "/expenses", body)
		assert.Equal(t, 400, w.Code, body)
	}
	// 校验失败时不应创建类别或写入记录
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List_UnknownCategory(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(userID.String(), "不存在").
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).List)

	req := httptest.NewRequest("GET", "/expenses?category_name=%E4%B8%8D%E5%AD%98%E5%9C%A8&page_size=500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
	assert.Equal(t, float64(50), data["page_size"])
	assert.Empty(t, data["list"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	categoryID := uuid.New()
	date := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `expenses` .*ORDER BY expenses.amount ASC, expenses.id ASC LIMIT 10 OFFSET 10").
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(uuid.New().String(), userID.String(), categoryID.String(), "12.50", "PLN", date, nil, date, date))
	mock.ExpectQuery("SELECT \\* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(categoryID.String(), userID.String(), "餐饮", date, date))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).List)

	req := httptest.NewRequest("GET", "/expenses?page=2&page_size=10&sort_by=amount&sort_desc=false&min_amount=10&to_date=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(2), data["page"])
	list := data["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "餐饮", list[0].(map[string]interface{})["category_name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List_BadParams(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.GET("/expenses", NewExpenseHandler(svc.Expenses, svc.Accounts).List)

	for _, q := range []string{"min_amount=abc", "from_date=yesterday", "page=x"} {
		req := httptest.NewRequest("GET", "/expenses?"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code, q)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	expenseID := uuid.New()
	categoryID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(expenseID.String(), userID.String()).
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(expenseID.String(), userID.String(), categoryID.String(), "10.00", "PLN", now, nil, now, now))
	mock.ExpectQuery("SELECT \\* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(categoryID.String(), userID.String(), "餐饮", now, now))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.DELETE("/expenses/:id", NewExpenseHandler(svc.Expenses, svc.Accounts).Delete)

	req := httptest.NewRequest("DELETE", "/expenses/"+expenseID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Empty(t, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete_NotFound(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	expenseID := uuid.New()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(expenseID.String(), userID.String()).
		WillReturnRows(sqlmock.NewRows(expenseColumns))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.DELETE("/expenses/:id", NewExpenseHandler(svc.Expenses, svc.Accounts).Delete)

	req := httptest.NewRequest("DELETE", "/expenses/"+expenseID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
