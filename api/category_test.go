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

var categoryColumns = []string{"id", "user_id", "name", "created_at", "updated_at"}

func TestCategoryHandler_Create(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()

	// 名称未被占用
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(userID.String(), "餐饮").
		WillReturnRows(sqlmock.NewRows(categoryColumns))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.POST("/categories", NewCategoryHandler(svc.Categories).Create)

	w := postJSON(router, "/categories", `{"name":"  餐饮  "}`)

	assert.Equal(t, 201, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/api/v1/categories/"))
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "餐饮", data["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_Duplicate(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(userID.String(), "餐饮").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(uuid.New().String(), userID.String(), "餐饮", time.Now(), time.Now()))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.POST("/categories", NewCategoryHandler(svc.Categories).Create)

	w := postJSON(router, "/categories", `{"name":"餐饮"}`)

	assert.Equal(t, 409, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_MissingName(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.POST("/categories", NewCategoryHandler(svc.Categories).Create)

	w := postJSON(router, "/categories", `{}`)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Delete_InUse(t *testing.T) {
	svc, mock, cleanup := setupMockDB(t)
	defer cleanup()

	userID := uuid.New()
	categoryID := uuid.New()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(categoryID.String(), userID.String()).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(categoryID.String(), userID.String(), "餐饮", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses`").
		WithArgs(userID.String(), categoryID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.DELETE("/categories/:id", NewCategoryHandler(svc.Categories).Delete)

	req := httptest.NewRequest("DELETE", "/categories/"+categoryID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Get_InvalidID(t *testing.T) {
	svc, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(uuid.New()))
	router.GET("/categories/:id", NewCategoryHandler(svc.Categories).Get)

	req := httptest.NewRequest("GET", "/categories/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "无效的ID", decodeResponse(t, w)["message"])
}
