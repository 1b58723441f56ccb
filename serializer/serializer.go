// Package serializer maps gorm models to the camelCase wire shapes the
// frontend consumes. Handlers never marshal models directly.
package serializer

import (
	"time"

	"github.com/MayMartirosyan/svmotors-backend/models"
)

// Product availability states for enriched order/cart lines.
const (
	ProductPresent = "present"
	ProductDeleted = "deleted"
	ProductMissing = "missing"
)

type ProductResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Price            float64  `json:"price"`
	DiscountedPrice  *float64 `json:"discountedPrice"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	SKU              string   `json:"sku,omitempty"`
	Article          string   `json:"article,omitempty"`
	ImageURL         string   `json:"imageUrl"`
	IsNew            bool     `json:"isNew"`
	IsRecommended    bool     `json:"isRecommended"`
	CategoryID       uint     `json:"categoryId"`
	BrandID          *uint    `json:"brandId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func Product(p *models.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Price:            p.Price,
		DiscountedPrice:  p.DiscountedPrice,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Article:          p.Article,
		ImageURL:         p.ImageURL,
		IsNew:            p.IsNew,
		IsRecommended:    p.IsRecommended,
		CategoryID:       p.CategoryID,
		BrandID:          p.BrandID,
		CreatedAt:        p.CreatedAt,
	}
}

func Products(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, *Product(&ps[i]))
	}
	return out
}

type CartItemResponse struct {
	ID        uint             `json:"id"`
	ProductID uint             `json:"productId"`
	Qty       int              `json:"qty"`
	Product   *ProductResponse `json:"product"`
	CreatedAt time.Time        `json:"createdAt"`
}

func CartItem(item *models.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Qty:       item.Qty,
		Product:   Product(item.Product),
		CreatedAt: item.CreatedAt,
	}
}

type CartResponse struct {
	Cart        []CartItemResponse `json:"cart"`
	CartSummary float64            `json:"cartSummary"`
}

func Cart(items []models.CartItem, summary float64) CartResponse {
	out := make([]CartItemResponse, 0, len(items))
	for i := range items {
		out = append(out, CartItem(&items[i]))
	}
	return CartResponse{Cart: out, CartSummary: summary}
}

type UserResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname,omitempty"`
	Email        string     `json:"email"`
	Tel          string     `json:"tel,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	BirthdayDate *time.Time `json:"birthdayDate,omitempty"`
	CartSummary  float64    `json:"cartSummary"`
	IsGuest      bool       `json:"isGuest"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func User(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Surname:      u.Surname,
		Email:        u.Email,
		Tel:          u.Tel,
		Gender:       u.Gender,
		BirthdayDate: u.BirthdayDate,
		CartSummary:  u.CartSummary,
		IsGuest:      u.IsGuest(),
		CreatedAt:    u.CreatedAt,
	}
}

type CheckoutItemResponse struct {
	ProductID uint `json:"productId"`
	Qty       int  `json:"qty"`
}

// EnrichedItemResponse is a frozen checkout line joined with a live product
// snapshot. ProductState distinguishes a product that is present, one that
// was soft-deleted since the checkout, and one that never resolved.
type EnrichedItemResponse struct {
	ProductID    uint             `json:"productId"`
	Qty          int              `json:"qty"`
	ProductState string           `json:"productState"`
	Product      *ProductResponse `json:"product"`
}

type CheckoutResponse struct {
	ID            uint                   `json:"id"`
	Name          string                 `json:"name"`
	Surname       string                 `json:"surname"`
	Email         string                 `json:"email"`
	Tel           string                 `json:"tel"`
	DeliveryType  string                 `json:"deliveryType"`
	TimeFrom      *string                `json:"timeFrom"`
	TimeTo        *string                `json:"timeTo"`
	PaymentMethod string                 `json:"paymentMethod"`
	TotalAmount   float64                `json:"totalAmount"`
	CartItems     []CheckoutItemResponse `json:"cartItems"`
	UserID        *uint                  `json:"userId,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func Checkout(ch *models.Checkout) *CheckoutResponse {
	if ch == nil {
		return nil
	}
	items := make([]CheckoutItemResponse, 0, len(ch.Items))
	for _, item := range ch.Items {
		items = append(items, CheckoutItemResponse{ProductID: item.ProductID, Qty: item.Qty})
	}
	return &CheckoutResponse{
		ID:            ch.ID,
		Name:          ch.Name,
		Surname:       ch.Surname,
		Email:         ch.Email,
		Tel:           ch.Tel,
		DeliveryType:  ch.DeliveryType,
		TimeFrom:      ch.TimeFrom,
		TimeTo:        ch.TimeTo,
		PaymentMethod: ch.PaymentMethod,
		TotalAmount:   ch.TotalAmount,
		CartItems:     items,
		UserID:        ch.UserID,
		CreatedAt:     ch.CreatedAt,
	}
}

type OrderResponse struct {
	ID          uint              `json:"id"`
	Number      string            `json:"number"`
	Status      string            `json:"status"`
	TotalAmount float64           `json:"totalAmount"`
	CheckoutID  uint              `json:"checkoutId"`
	Checkout    *CheckoutResponse `json:"checkout,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func Order(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		CheckoutID:  o.CheckoutID,
		Checkout:    Checkout(o.Checkout),
		CreatedAt:   o.CreatedAt,
	}
}

func Orders(os []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for i := range os {
		out = append(out, Order(&os[i]))
	}
	return out
}

// EnrichedOrderResponse is an order whose frozen lines carry live product
// snapshots for display. TotalAmount stays the frozen checkout total.
type EnrichedOrderResponse struct {
	OrderResponse
	Items []EnrichedItemResponse `json:"items"`
}

type CategoryNodeResponse struct {
	ID       uint                   `json:"id"`
	Name     string                 `json:"name"`
	Slug     string                 `json:"slug"`
	ImageURL string                 `json:"imageUrl"`
	ParentID *uint                  `json:"parentId,omitempty"`
	Children []CategoryNodeResponse `json:"children"`
}

func CategoryTree(nodes []*models.CategoryNode) []CategoryNodeResponse {
	out := make([]CategoryNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, CategoryNodeResponse{
			ID:       n.ID,
			Name:     n.Name,
			Slug:     n.Slug,
			ImageURL: n.ImageURL,
			ParentID: n.ParentID,
			Children: CategoryTree(n.Children),
		})
	}
	return out
}

type BrandResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func Brand(b *models.Brand) BrandResponse {
	return BrandResponse{ID: b.ID, Name: b.Name, ImageURL: b.ImageURL}
}

func Brands(bs []models.Brand) []BrandResponse {
	out := make([]BrandResponse, 0, len(bs))
	for i := range bs {
		out = append(out, Brand(&bs[i]))
	}
	return out
}

type RequestResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func Request(r *models.Request) RequestResponse {
	return RequestResponse{ID: r.ID, Name: r.Name, Phone: r.Phone, Comment: r.Comment, CreatedAt: r.CreatedAt}
}

func Requests(rs []models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(rs))
	for i := range rs {
		out = append(out, Request(&rs[i]))
	}
	return out
}
