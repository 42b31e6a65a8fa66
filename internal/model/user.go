package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserKind is the stored discriminator of the users table
type UserKind string

const (
	KindPlainUser UserKind = "user"
	KindAdminUser UserKind = "admin_user"
)

// AdminStatus is the privilege level of an admin user
type AdminStatus string

const (
	AdminStatusNone    AdminStatus = "none"
	AdminStatusRegular AdminStatus = "regular"
	AdminStatusFull    AdminStatus = "full"
)

// User is a plain user or an admin user, told apart by Kind.
// AdminStatus is only meaningful for KindAdminUser.
type User struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UUID        string      `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	Username    string      `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email       string      `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string      `json:"-" gorm:"type:varchar(300);not null"`
	Kind        UserKind    `json:"type" gorm:"column:type;type:varchar(20);not null;default:'user'"`
	AdminStatus AdminStatus `json:"admin_status,omitempty" gorm:"type:varchar(50)"`
}

// BeforeCreate assigns the uuid and defaults Kind to a plain user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	if u.Kind == "" {
		u.Kind = KindPlainUser
	}
	return nil
}

// Profile is the sum type Plain | Admin{Status}
type Profile interface {
	isProfile()
}

// PlainProfile is the profile of a user without admin rights
type PlainProfile struct{}

// AdminProfile carries the admin status of an admin user
type AdminProfile struct {
	Status AdminStatus
}

func (PlainProfile) isProfile() {}
func (AdminProfile) isProfile() {}

// Profile returns the user's profile variant
func (u *User) Profile() Profile {
	if u.Kind == KindAdminUser {
		return AdminProfile{Status: u.AdminStatus}
	}
	return PlainProfile{}
}

// IsAdmin reports whether the user is an admin user of any status
func (u *User) IsAdmin() bool {
	_, ok := u.Profile().(AdminProfile)
	return ok
}
