package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a customer or administrator. PasswordHash is persisted but never
// serialized to JSON.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash,omitempty"`
	Street       string             `json:"street" bson:"street"`
	Apartment    string             `json:"apartment" bson:"apartment"`
	City         string             `json:"city" bson:"city"`
	Zip          string             `json:"zip" bson:"zip"`
	Country      string             `json:"country" bson:"country"`
	Phone        string             `json:"phone" bson:"phone"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
}

type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Street       *string
	Apartment    *string
	City         *string
	Zip          *string
	Country      *string
	Phone        *string
	IsAdmin      *bool
}

func (p UserPatch) Fields() bson.M {
	set := bson.M{}
	for key, v := range map[string]*string{
		"name":         p.Name,
		"email":        p.Email,
		"passwordHash": p.PasswordHash,
		"street":       p.Street,
		"apartment":    p.Apartment,
		"city":         p.City,
		"zip":          p.Zip,
		"country":      p.Country,
		"phone":        p.Phone,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	if p.IsAdmin != nil {
		set["isAdmin"] = *p.IsAdmin
	}
	return set
}

func (p UserPatch) Apply(u *User) {
	for dst, v := range map[*string]*string{
		&u.Name:         p.Name,
		&u.Email:        p.Email,
		&u.PasswordHash: p.PasswordHash,
		&u.Street:       p.Street,
		&u.Apartment:    p.Apartment,
		&u.City:         p.City,
		&u.Zip:          p.Zip,
		&u.Country:      p.Country,
		&u.Phone:        p.Phone,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
