package http

import (
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ProductDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	ImageURL      string `json:"image_url"`
	ImageFilename string `json:"image_filename,omitempty"`
}

// AdminProductDTO is the product manager view; it includes the cost.
type AdminProductDTO struct {
	ProductDTO
	Cost          string    `json:"cost"`
	ImageMimeType string    `json:"image_mimetype,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CartLineDTO struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	ImageURL  string `json:"image_url"`
}

type CartDTO struct {
	Lines    []CartLineDTO `json:"lines"`
	Total    string        `json:"total"`
	Items    int           `json:"items"`
	Currency string        `json:"currency"`
}

type CartCountDTO struct {
	Items int `json:"items"`
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type SignupRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckoutResultDTO struct {
	Status string  `json:"status"`
	Cart   CartDTO `json:"cart"`
}

func imageURL(id int64) string {
	return fmt.Sprintf("/api/v1/products/%d/image", id)
}

func toProductDTO(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		ImageURL:      imageURL(p.ID),
		ImageFilename: p.ImageFilename,
	}
}

func toAdminProductDTO(p *domain.Product) AdminProductDTO {
	return AdminProductDTO{
		ProductDTO:    toProductDTO(p),
		Cost:          p.Cost.StringFixed(2),
		ImageMimeType: p.ImageMimeType,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toCartDTO(v domain.CartView) CartDTO {
	lines := make([]CartLineDTO, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, CartLineDTO{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			UnitPrice: l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
			ImageURL:  imageURL(l.Product.ID),
		})
	}
	return CartDTO{
		Lines:    lines,
		Total:    v.Total.StringFixed(2),
		Items:    v.Items,
		Currency: domain.Currency,
	}
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}
