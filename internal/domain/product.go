package domain

import (
	"bytes"
	"encoding/base64"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 1000
	MaxFilenameLength    = 40
	MaxMimeTypeLength    = 50
)

type Product struct {
	ID            int64
	Title         string
	Description   string
	ImageData     []byte
	ImageBase64   string
	ImageMimeType string
	ImageFilename string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Image is an uploaded product picture.
type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

// ProductInput is what the catalog management form submits. Price and cost
// arrive as raw strings and are only trusted after Validate.
type ProductInput struct {
	Title       string
	Description string
	Price       string
	Cost        string
	Image       *Image
}

// ValidProduct is a ProductInput that passed validation.
type ValidProduct struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Image       *Image
}

// Validate checks every field and parses the monetary values. requireImage is
// set for creation; edits may keep the stored image.
func (in ProductInput) Validate(requireImage bool) (*ValidProduct, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidProduct("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, invalidProduct("title", "is too long")
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalidProduct("description", "is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, invalidProduct("description", "is too long")
	}

	price, err := ParseMoney(in.Price)
	if err != nil {
		return nil, invalidProduct("price", err.Error())
	}
	cost, err := ParseMoney(in.Cost)
	if err != nil {
		return nil, invalidProduct("cost", err.Error())
	}

	if in.Image == nil {
		if requireImage {
			return nil, invalidProduct("image", "is required")
		}
	} else {
		if len(in.Image.Data) == 0 {
			return nil, invalidProduct("image", "is empty")
		}
		if in.Image.Filename == "" || len(in.Image.Filename) > MaxFilenameLength {
			return nil, invalidProduct("image filename", "must be 1-40 characters")
		}
		if in.Image.MimeType == "" || len(in.Image.MimeType) > MaxMimeTypeLength {
			return nil, invalidProduct("image mimetype", "must be 1-50 characters")
		}
	}

	return &ValidProduct{
		Title:       title,
		Description: description,
		Price:       price,
		Cost:        cost,
		Image:       in.Image,
	}, nil
}

// Apply copies the validated fields onto p. The stored image is only
// replaced when a new one was uploaded.
func (v *ValidProduct) Apply(p *Product) {
	p.Title = v.Title
	p.Description = v.Description
	p.Price = v.Price
	p.Cost = v.Cost
	if v.Image != nil {
		p.SetImage(*v.Image)
	}
}

// SetImage stores the bytes together with their base64 copy so both always
// describe the same payload.
func (p *Product) SetImage(img Image) {
	p.ImageData = append([]byte(nil), img.Data...)
	p.ImageBase64 = base64.StdEncoding.EncodeToString(img.Data)
	p.ImageMimeType = img.MimeType
	p.ImageFilename = img.Filename
}

// ImageConsistent reports whether ImageBase64 decodes to ImageData.
func (p *Product) ImageConsistent() bool {
	decoded, err := base64.StdEncoding.DecodeString(p.ImageBase64)
	if err != nil {
		return false
	}
	return bytes.Equal(decoded, p.ImageData)
}
