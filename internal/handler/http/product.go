package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

// ProductHandler 处理商品目录请求
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler 创建 ProductHandler 实例
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts 返回全部商品 (没有分页和过滤)
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		HandleServiceError(c, "Failed to fetch products", err)
		return
	}
	SuccessResponse(c, http.StatusOK, products)
}
