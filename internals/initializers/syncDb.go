package initializers

import (
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.Account{},
		&models.LoginAttempt{},
		&models.RateLimitWindow{},
		&models.OTPChallenge{},
		&models.Session{},
	)
	if err != nil {
		panic("Failed to migrate database")
	}
}
