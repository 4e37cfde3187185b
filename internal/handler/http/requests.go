package http

import "eshop-api/internal/model"

type categoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Icon  *string `json:"icon"`
	Color *string `json:"color" validate:"omitempty,max=50"`
}

func (c categoryRequest) toCategory() *model.Category {
	out := &model.Category{}
	c.patch().Apply(out)
	return out
}

func (c categoryRequest) patch() model.CategoryPatch {
	return model.CategoryPatch{Name: c.Name, Icon: c.Icon, Color: c.Color}
}

type productRequest struct {
	Name            *string   `json:"name" validate:"omitempty,max=200"`
	Description     *string   `json:"description"`
	RichDescription *string   `json:"richDescription"`
	Image           *string   `json:"image"`
	Images          *[]string `json:"images"`
	Brand           *string   `json:"brand"`
	Price           *float64  `json:"price" validate:"omitempty,gte=0"`
	Category        string    `json:"category"`
	CountInStock    *int      `json:"countInStock" validate:"omitempty,gte=0,lte=255"`
	Rating          *float64  `json:"rating" validate:"omitempty,gte=0"`
	NumReviews      *int      `json:"numReviews" validate:"omitempty,gte=0"`
	IsFeatured      *bool     `json:"isFeatured"`
}

func (p productRequest) patch() model.ProductPatch {
	return model.ProductPatch{
		Name:            p.Name,
		Description:     p.Description,
		RichDescription: p.RichDescription,
		Image:           p.Image,
		Images:          p.Images,
		Brand:           p.Brand,
		Price:           p.Price,
		CountInStock:    p.CountInStock,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		IsFeatured:      p.IsFeatured,
	}
}

func (p productRequest) toProduct() *model.Product {
	out := &model.Product{}
	p.patch().Apply(out)
	return out
}

type userRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsAdmin   bool   `json:"isAdmin"`
}

func (u userRequest) toUser() *model.User {
	return &model.User{
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Street:    u.Street,
		Apartment: u.Apartment,
		City:      u.City,
		Zip:       u.Zip,
		Country:   u.Country,
		IsAdmin:   u.IsAdmin,
	}
}

type userPatchRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	Street    *string `json:"street"`
	Apartment *string `json:"apartment"`
	City      *string `json:"city"`
	Zip       *string `json:"zip"`
	Country   *string `json:"country"`
	IsAdmin   *bool   `json:"isAdmin"`
}

func (u userPatchRequest) patch() model.UserPatch {
	return model.UserPatch{
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Street:    u.Street,
		Apartment: u.Apartment,
		City:      u.City,
		Zip:       u.Zip,
		Country:   u.Country,
		IsAdmin:   u.IsAdmin,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type orderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type orderRequest struct {
	OrderItems       []orderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string             `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string             `json:"shippingAddress2"`
	City             string             `json:"city" validate:"required"`
	Zip              string             `json:"zip" validate:"required"`
	Country          string             `json:"country" validate:"required"`
	Phone            string             `json:"phone" validate:"required"`
	User             string             `json:"user" validate:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
