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

var incomeColumns = []string{"id", "user_id", "amount", "currency_code", "date", "source", "created_at", "updated_at"}

func TestIncomeHandler_Create(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.POST("/incomes", NewIncomeHandler(svc.Incomes, svc.Accounts).Create)

	w := postJSON(router, "/incomes", `{"amount":5000,"currency_code":"pln","source":" 工资 ","date":"2024-01-10"}`)

	assert.Equal(t, 201, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/api/v1/incomes/"))
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "工资", data["source"])
	assert.Equal(t, "PLN", data["currency_code"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Create_MissingSource(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.POST("/incomes", NewIncomeHandler(svc.Incomes, svc.Accounts).Create)

	w := postJSON(router, "/incomes", `{"amount":5000,"currency_code":"PLN","source":"   "}`)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Get_NotFound(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	incomeID := uuid.New()
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(incomeID.String(), userID.String()).
		WillReturnRows(sqlmock.NewRows(incomeColumns))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/incomes/:id", NewIncomeHandler(svc.Incomes, svc.Accounts).Get)

	req := httptest.NewRequest("GET", "/incomes/"+incomeID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_List_SortBySource(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `incomes`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT \\* FROM `incomes` .*ORDER BY incomes.source DESC, incomes.id DESC LIMIT 20").
		WillReturnRows(sqlmock.NewRows(incomeColumns).
			AddRow(uuid.New().String(), userID.String(), "100.00", "USD", now, "奖金", now, now).
			AddRow(uuid.New().String(), userID.String(), "5000.00", "USD", now, "工资", now, now))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/incomes", NewIncomeHandler(svc.Incomes, svc.Accounts).List)

	req := httptest.NewRequest("GET", "/incomes?sort_by=SOURCE&currency_code=usd", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Len(t, data["list"], 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
