package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const OrderStatusPending = "Pending"

type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderItems       []OrderItem        `json:"orderItems" bson:"orderItems"`
	ShippingAddress1 string             `json:"shippingAddress1" bson:"shippingAddress1"`
	ShippingAddress2 string             `json:"shippingAddress2" bson:"shippingAddress2"`
	City             string             `json:"city" bson:"city"`
	Zip              string             `json:"zip" bson:"zip"`
	Country          string             `json:"country" bson:"country"`
	Phone            string             `json:"phone" bson:"phone"`
	Status           string             `json:"status" bson:"status"`
	TotalPrice       float64            `json:"totalPrice" bson:"totalPrice"`
	User             primitive.ObjectID `json:"user" bson:"user"`
	DateOrdered      time.Time          `json:"dateOrdered" bson:"dateOrdered"`
}
