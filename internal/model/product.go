package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	RichDescription string             `json:"richDescription" bson:"richDescription"`
	Image           string             `json:"image" bson:"image"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand" bson:"brand"`
	Price           float64            `json:"price" bson:"price"`
	Category        primitive.ObjectID `json:"category" bson:"category"`
	CountInStock    int                `json:"countInStock" bson:"countInStock"`
	Rating          float64            `json:"rating" bson:"rating"`
	NumReviews      int                `json:"numReviews" bson:"numReviews"`
	IsFeatured      bool               `json:"isFeatured" bson:"isFeatured"`
	DateCreated     time.Time          `json:"dateCreated" bson:"dateCreated"`
}

// ProductView is a product with its category reference expanded. Category is
// nil when the reference dangles.
type ProductView struct {
	Product
	Category *Category `json:"category"`
}

// ProductFilter narrows a product listing. A zero Limit means unlimited.
type ProductFilter struct {
	Categories   []primitive.ObjectID
	FeaturedOnly bool
	Limit        int64
}

type ProductPatch struct {
	Name            *string
	Description     *string
	RichDescription *string
	Image           *string
	Images          *[]string
	Brand           *string
	Price           *float64
	Category        *primitive.ObjectID
	CountInStock    *int
	Rating          *float64
	NumReviews      *int
	IsFeatured      *bool
}

func (p ProductPatch) Fields() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.RichDescription != nil {
		set["richDescription"] = *p.RichDescription
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.Brand != nil {
		set["brand"] = *p.Brand
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.CountInStock != nil {
		set["countInStock"] = *p.CountInStock
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.NumReviews != nil {
		set["numReviews"] = *p.NumReviews
	}
	if p.IsFeatured != nil {
		set["isFeatured"] = *p.IsFeatured
	}
	return set
}

func (p ProductPatch) Apply(pr *Product) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.RichDescription != nil {
		pr.RichDescription = *p.RichDescription
	}
	if p.Image != nil {
		pr.Image = *p.Image
	}
	if p.Images != nil {
		pr.Images = append([]string(nil), (*p.Images)...)
	}
	if p.Brand != nil {
		pr.Brand = *p.Brand
	}
	if p.Price != nil {
		pr.Price = *p.Price
	}
	if p.Category != nil {
		pr.Category = *p.Category
	}
	if p.CountInStock != nil {
		pr.CountInStock = *p.CountInStock
	}
	if p.Rating != nil {
		pr.Rating = *p.Rating
	}
	if p.NumReviews != nil {
		pr.NumReviews = *p.NumReviews
	}
	if p.IsFeatured != nil {
		pr.IsFeatured = *p.IsFeatured
	}
}
