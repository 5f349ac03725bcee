package models

import "gorm.io/gorm"

// Account mirrors the portal's editor/administrator directory. This
// subsystem treats it as read-only except for the Active flag, which a ban
// flips to false.
type Account struct {
	gorm.Model
	Email    string `gorm:"column:email;uniqueIndex"`
	Password string `gorm:"column:password"`
	Role     string `gorm:"column:role;default:editor"`
	Active   bool   `gorm:"column:active;default:true"`

	// Optional TOTP second factor, usable in place of the emailed code
	TOTPEnabled bool   `gorm:"column:totp_enabled;default:false"`
	TOTPSecret  string `gorm:"column:totp_secret;default:null"`
}
