package models

import "time"

type User struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Role        string    `bson:"role" json:"role"` // candidate | employer
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
