package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/constants"
)

// User is an editor account. Privileges gate content operations; the admin
// privilege implies every other one.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"full_name" json:"full_name"`
	PasswordHash string          `bson:"password_hash" json:"-"`
	Privileges   map[string]bool `bson:"privileges" json:"privileges"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at" json:"updated_at"`
}

func (u *User) HasPrivilege(privilege string) bool {
	if u.Privileges == nil {
		return false
	}
	if u.Privileges[constants.PrivilegeAdmin] {
		return true
	}
	return u.Privileges[privilege]
}
