package mongopersistence

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// 集合名称
const (
	usersCollection         = "users"
	productsCollection      = "products"
	ordersCollection        = "orders"
	notificationsCollection = "notifications"
)

// 以下 document 类型是 MongoDB 中的存储形态，领域 ID 是 ObjectID 的十六进制字符串。

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type productDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Price    float64            `bson:"price"`
	Category string             `bson:"category"`
	Image    string             `bson:"image"`
	Stock    int                `bson:"stock"`
}

type orderItemDocument struct {
	ProductID string  `bson:"productId"`
	Quantity  int     `bson:"quantity"`
	UnitPrice float64 `bson:"unitPrice,omitempty"`
}

type orderDocument struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Reference string              `bson:"reference"`
	UserID    string              `bson:"userId"`
	Items     []orderItemDocument `bson:"items"`
	Total     float64             `bson:"total"`
	CreatedAt time.Time           `bson:"createdAt"`
}

type notificationDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Kind       string             `bson:"kind"`
	Recipient  string             `bson:"recipient"`
	Subject    string             `bson:"subject"`
	Body       string             `bson:"body"`
	Status     string             `bson:"status"`
	Attempts   int                `bson:"attempts"`
	LastError  string             `bson:"lastError,omitempty"`
	SubjectRef string             `bson:"subjectRef"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
	SentAt     *time.Time         `bson:"sentAt,omitempty"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
	}
}

func (d *productDocument) toDomain() domain.Product {
	return domain.Product{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Price:    d.Price,
		Category: d.Category,
		Image:    d.Image,
		Stock:    d.Stock,
	}
}

func newOrderDocument(o *domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDocument{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return orderDocument{
		Reference: o.Reference,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}

func (d *orderDocument) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.OrderItem{
			OrderID:   d.ID.Hex(),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return domain.Order{
		ID:        d.ID.Hex(),
		Reference: d.Reference,
		UserID:    d.UserID,
		Items:     items,
		Total:     d.Total,
		CreatedAt: d.CreatedAt,
	}
}

func newNotificationDocument(n *domain.Notification) notificationDocument {
	return notificationDocument{
		Kind:       string(n.Kind),
		Recipient:  n.Recipient,
		Subject:    n.Subject,
		Body:       n.Body,
		Status:     string(n.Status),
		Attempts:   n.Attempts,
		LastError:  n.LastError,
		SubjectRef: n.SubjectRef,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		SentAt:     n.SentAt,
	}
}

func (d *notificationDocument) toDomain() domain.Notification {
	return domain.Notification{
		ID:         d.ID.Hex(),
		Kind:       domain.NotificationKind(d.Kind),
		Recipient:  d.Recipient,
		Subject:    d.Subject,
		Body:       d.Body,
		Status:     domain.NotificationStatus(d.Status),
		Attempts:   d.Attempts,
		LastError:  d.LastError,
		SubjectRef: d.SubjectRef,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		SentAt:     d.SentAt,
	}
}
