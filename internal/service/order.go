package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// PricingMode 决定订单总额如何确定。
type PricingMode string

const (
	// PricingCatalog 按商品目录价格重新计算总额并扣减库存，与客户端总额不一致则拒绝。
	PricingCatalog PricingMode = "catalog"
	// PricingTrust 原样信任客户端提交的总额，不查商品也不动库存。
	PricingTrust PricingMode = "trust"
)

// ParsePricingMode 解析配置中的定价模式。
func ParsePricingMode(s string) (PricingMode, error) {
	switch PricingMode(strings.ToLower(strings.TrimSpace(s))) {
	case PricingCatalog, "":
		return PricingCatalog, nil
	case PricingTrust:
		return PricingTrust, nil
	default:
		return "", fmt.Errorf("unknown pricing mode %q (want %q or %q)", s, PricingCatalog, PricingTrust)
	}
}

const orderConfirmationSubject = "Order Confirmation"

// PlaceOrderInput 是下单请求的字段
type PlaceOrderInput struct {
	UserID string
	Items  []domain.OrderItem
	Total  float64
	Email  string // 确认邮件的收件地址
}

// OrderService 负责下单。
type OrderService struct {
	store      repository.Store
	dispatcher NotificationDispatcher
	pricing    PricingMode
	currency   string
	now        Clock

	catalogChanged func() // 库存扣减提交后调用，例如让商品列表缓存失效
}

// NewOrderService 创建 OrderService 实例。
func NewOrderService(store repository.Store, dispatcher NotificationDispatcher, pricing PricingMode, currency string) *OrderService {
	if store == nil {
		panic("Store cannot be nil for OrderService")
	}
	if pricing == "" {
		pricing = PricingCatalog
	}
	if currency == "" {
		currency = "KES"
	}
	return &OrderService{
		store:      store,
		dispatcher: dispatcher,
		pricing:    pricing,
		currency:   currency,
		now:        utcNow,
	}
}

// OnCatalogChange 注册库存变化后的回调
func (s *OrderService) OnCatalogChange(fn func()) {
	s.catalogChanged = fn
}

// PlaceOrder 在一个事务中写入订单和确认邮件通知 (catalog 模式下同时扣减库存)，
// 提交后投递通知。邮件投递失败不会影响返回结果，也不会回滚订单。
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	logCtx := logrus.WithFields(logrus.Fields{"operation": "PlaceOrder", "user_id": in.UserID})

	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]domain.OrderItem, len(in.Items))
	copy(items, in.Items)
	order := &domain.Order{
		Reference: generateOrderRef(now),
		UserID:    in.UserID,
		Items:     items,
		Total:     in.Total,
		CreatedAt: now,
	}
	note := domain.NewNotification(domain.NotificationKindOrderConfirmation, in.Email, orderConfirmationSubject,
		fmt.Sprintf("Your order of %s %s has been placed.", s.currency, formatAmount(in.Total)), now)

	var taken []domain.OrderItem
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		taken = nil
		if s.pricing == PricingCatalog {
			if err := priceFromCatalog(ctx, tx.Products(), order); err != nil {
				return err
			}
			var err error
			if taken, err = takeStock(ctx, tx.Products(), order.Items); err != nil {
				return err
			}
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		note.SubjectRef = order.ID
		return tx.Notifications().Create(ctx, note)
	})
	if err != nil {
		if len(taken) > 0 && !s.store.Transactional() {
			s.restoreStock(ctx, taken, logCtx)
		}
		if IsValidation(err) {
			logCtx.WithError(err).Warn("Order rejected")
			return nil, err
		}
		logCtx.WithError(err).Error("Database error during order creation")
		return nil, ErrInternalServer
	}

	if s.pricing == PricingCatalog && s.catalogChanged != nil {
		s.catalogChanged()
	}
	dispatchAfterCommit(ctx, s.dispatcher, note)

	logCtx.WithFields(logrus.Fields{"order_id": order.ID, "total": order.Total}).Info("Order placed successfully")
	return order, nil
}

// priceFromCatalog 解析每个行项目的目录价格，最终总额必须和客户端提交的总额一致 (精确到分)。
// 这里只读不写: 全部校验通过后才由 takeStock 扣减库存。
func priceFromCatalog(ctx context.Context, products repository.ProductRepository, order *domain.Order) error {
	var computed float64
	for i := range order.Items {
		item := &order.Items[i]
		product, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownProduct, item.ProductID)
			}
			return err
		}
		if product.Stock < item.Quantity {
			return fmt.Errorf("%w: %s (requested %d)", ErrInsufficientStock, product.Name, item.Quantity)
		}
		item.UnitPrice = product.Price
		computed += product.Price * float64(item.Quantity)
	}
	if !domain.AmountsEqual(computed, order.Total) {
		return fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, formatAmount(computed), formatAmount(order.Total))
	}
	return nil
}

// takeStock 按行项目扣减库存，返回已经扣减成功的行项目。
// 并发下单可能在 priceFromCatalog 之后抢走库存，所以条件扣减仍然可能失败。
func takeStock(ctx context.Context, products repository.ProductRepository, items []domain.OrderItem) ([]domain.OrderItem, error) {
	taken := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if err := products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				err = fmt.Errorf("%w: %s (requested %d)", ErrInsufficientStock, item.ProductID, item.Quantity)
			case errors.Is(err, repository.ErrProductNotFound):
				err = fmt.Errorf("%w: %s", ErrUnknownProduct, item.ProductID)
			}
			return taken, err
		}
		taken = append(taken, item)
	}
	return taken, nil
}

// restoreStock 在存储不支持回滚时补回已扣减的库存。
// 使用脱离请求取消的 ctx，客户端断开也要补回。
func (s *OrderService) restoreStock(ctx context.Context, items []domain.OrderItem, logCtx *logrus.Entry) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range items {
		if err := s.store.Products().RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			logCtx.WithError(err).WithFields(logrus.Fields{
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).Error("Failed to restore stock of rejected order")
		}
	}
}

func validateOrderInput(in PlaceOrderInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidInput, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrInvalidInput, i)
		}
	}
	if in.Total < 0 {
		return fmt.Errorf("%w: total must not be negative", ErrInvalidInput)
	}
	return nil
}

// generateOrderRef 生成订单参考号，例如 20250908130500-<uuid4>
func generateOrderRef(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}

// formatAmount 以最短形式输出金额: 500 -> "500", 499.5 -> "499.5"
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
