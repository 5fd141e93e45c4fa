package api

import (
	"mybudget/middleware"
	"mybudget/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 类别管理
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest 创建/重命名类别请求
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"餐饮"`
}

// List 获取当前用户的类别
// @Summary 获取类别列表
// @Description 获取当前用户全部类别，按名称排序
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.categories.GetAll(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		ServiceError(c, err, "查询类别失败")
		return
	}
	Success(c, list)
}

// Get 获取单个类别
// @Summary 获取类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path string true "类别ID"
// @Success 200 {object} Response{data=models.Category} "获取成功"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		ServiceError(c, err, "查询类别失败")
		return
	}
	Success(c, category)
}

// Create 创建类别
// @Summary 创建类别
// @Description 名称去除首尾空白后在当前用户下唯一（区分大小写）
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "类别信息"
// @Success 201 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "类别名称已存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	category, err := h.categories.Add(c.Request.Context(), middleware.GetCurrentUserID(c), req.Name)
	if err != nil {
		ServiceError(c, err, "创建类别失败")
		return
	}
	Created(c, "/api/v1/categories/"+category.ID.String(), category)
}

// Update 重命名类别
// @Summary 重命名类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "类别ID"
// @Param request body CategoryRequest true "新名称"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别名称已存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	category, err := h.categories.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, req.Name)
	if err != nil {
		ServiceError(c, err, "更新类别失败")
		return
	}
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除类别
// @Summary 删除类别
// @Description 仍有消费记录引用的类别不能删除
// @Tags 类别
// @Security BearerAuth
// @Param id path string true "类别ID"
// @Success 204 "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别仍被引用"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		ServiceError(c, err, "删除类别失败")
		return
	}
	NoContent(c)
}
