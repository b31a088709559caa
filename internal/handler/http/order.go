package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

const orderFailed = "Order failed"

// OrderHandler 处理下单请求
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler 创建 OrderHandler 实例
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderItemRequest 是订单中的一个行项目
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrderRequest 定义下单请求的结构体。
// Total 使用指针，这样 0 是合法值而缺失字段会被拒绝。
type PlaceOrderRequest struct {
	UserID string             `json:"userId" binding:"required"`
	Items  []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Total  *float64           `json:"total" binding:"required,gte=0"`
	Email  string             `json:"email" binding:"required,email"`
}

// PlaceOrder 处理下单请求
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.PlaceOrder: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, orderFailed, err.Error())
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID: req.UserID,
		Items:  items,
		Total:  *req.Total,
		Email:  req.Email,
	})
	if err != nil {
		HandleServiceError(c, orderFailed, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Order placed successfully",
		"order_id":  order.ID,
		"reference": order.Reference,
	})
}
