package address

import (
	"time"

	"github.com/antonminaichev/storefront/internal/types/order"
)

type Address struct {
	ID          string          `json:"_id" bson:"_id"`
	UserID      string          `json:"user" bson:"user"`
	Label       string          `json:"label,omitempty" bson:"label,omitempty"`
	FullName    string          `json:"fullName" bson:"fullName"`
	Email       string          `json:"email" bson:"email"`
	Phone       string          `json:"phone" bson:"phone"`
	Address     string          `json:"address" bson:"address"`
	City        string          `json:"city" bson:"city"`
	State       string          `json:"state" bson:"state"`
	Pincode     string          `json:"pincode" bson:"pincode"`
	Country     string          `json:"country" bson:"country"`
	Coordinates *order.Location `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	IsDefault   bool            `json:"isDefault" bson:"isDefault"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}
