package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Icon  string             `json:"icon" bson:"icon"`
	Color string             `json:"color" bson:"color"`
}

// CategoryPatch holds the fields a PATCH may replace; nil means "keep".
type CategoryPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (p CategoryPatch) Fields() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Icon != nil {
		set["icon"] = *p.Icon
	}
	if p.Color != nil {
		set["color"] = *p.Color
	}
	return set
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
}
