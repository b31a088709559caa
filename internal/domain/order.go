package domain

import (
	"math"
	"time"
)

// Order 表示一笔已下的订单。UserID 和 ProductID 只是普通标识符，存储层不校验引用。
type Order struct {
	ID        string      `gorm:"type:varchar(64);primaryKey" json:"_id"`
	Reference string      `gorm:"type:varchar(100);uniqueIndex:idx_orders_reference" json:"reference"`
	UserID    string      `gorm:"type:varchar(64);index;not null" json:"userId"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     float64     `gorm:"not null" json:"total"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"` // server clock at insertion
}

// OrderItem 是订单中的一行。
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   string  `gorm:"type:varchar(64);index;not null" json:"-"`
	ProductID string  `gorm:"type:varchar(64);not null" json:"productId"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `json:"unitPrice,omitempty"` // catalog price at order time, zero when pricing is trusted
}

// AmountsEqual compares two money amounts at cent precision.
func AmountsEqual(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
