package domain

// Product 是商品目录中的一项。HTTP 层只读，写入只通过 seed 命令。
// Name 唯一，重复执行 seed 不会产生重复商品。
type Product struct {
	ID       string  `gorm:"type:varchar(64);primaryKey" json:"_id"`
	Name     string  `gorm:"type:varchar(191);not null;uniqueIndex:idx_products_name" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	Category string  `gorm:"type:varchar(191);index" json:"category"`
	Image    string  `gorm:"type:text" json:"image"`
	Stock    int     `gorm:"not null;default:0" json:"stock"`
}
