package initializers

import (
	"log"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/config"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
)

// StartCleanup runs the retention janitor. It never makes a validity
// decision — expired sessions and challenges are already dead on lookup —
// it only keeps the tables from growing without bound.
func StartCleanup(cfg *config.Config) {
	ticker := time.NewTicker(cfg.CleanupInterval)

	go func() {
		for range ticker.C {
			now := time.Now()

			// We use Unscoped() to perform a 'Hard Delete' (physical removal),
			// bypassing GORM's default Soft Delete (deleted_at) so the
			// database does not grow indefinitely.

			// 1. Rate-limit buckets whose window has fully elapsed
			windows := DB.Unscoped().
				Where("window_start < ?", now.Add(-cfg.RateLimitWindow)).
				Delete(&models.RateLimitWindow{})

			// 2. Challenges that are consumed or past expiry for a day
			challenges := DB.Unscoped().
				Where("consumed = ? OR expires_at < ?", true, now.Add(-24*time.Hour)).
				Delete(&models.OTPChallenge{})

			// 3. Sessions that reached a terminal state long ago. Recently
			// revoked ones are kept for the admin listing.
			sessions := DB.Unscoped().
				Where("(is_active = ? OR expires_at < ?) AND updated_at < ?", false, now, now.Add(-7*24*time.Hour)).
				Delete(&models.Session{})

			// 4. Attempt rows past the audit retention horizon
			attempts := DB.Unscoped().
				Where("created_at < ?", now.Add(-cfg.AuditRetention)).
				Delete(&models.LoginAttempt{})

			if windows.RowsAffected > 0 || challenges.RowsAffected > 0 || sessions.RowsAffected > 0 || attempts.RowsAffected > 0 {
				log.Printf("Janitor: cleaned %d rate windows, %d challenges, %d sessions, %d attempt rows",
					windows.RowsAffected, challenges.RowsAffected, sessions.RowsAffected, attempts.RowsAffected)
			}
		}
	}()
}
