package security

import (
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateLimiter counts requests per identifier in a fixed database-backed
// window. The count is moved by a single upsert whose SET clause increments
// or resets atomically, so concurrent callers can never both observe
// "count < max" and both slip through.
//
// The limiter fails closed: if the store is unreachable the request is
// denied rather than letting an outage open the gate.
type RateLimiter struct {
	DB     *gorm.DB
	Max    int
	Window time.Duration
}

func NewRateLimiter(db *gorm.DB, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{DB: db, Max: max, Window: window}
}

// RateLimitResult carries back-off information for the caller.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Check records one hit against the identifier's bucket and reports whether
// it is still inside the allowance.
func (r *RateLimiter) Check(identifier string) (RateLimitResult, error) {
	now := time.Now()
	cutoff := now.Add(-r.Window)

	var window models.RateLimitWindow
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		// One statement does all the work: insert a fresh bucket, or on
		// conflict bump the live bucket / reset a stale one. The CASE
		// expressions read the existing row, so the increment is atomic
		// at the SQL level.
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "identifier"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":        gorm.Expr("CASE WHEN window_start > ? THEN count + 1 ELSE 1 END", cutoff),
				"window_start": gorm.Expr("CASE WHEN window_start > ? THEN window_start ELSE ? END", cutoff, now),
				"max":          r.Max,
			}),
		}).Create(&models.RateLimitWindow{
			Identifier:  identifier,
			WindowStart: now,
			Count:       1,
			Max:         r.Max,
		})
		if res.Error != nil {
			return res.Error
		}
		return tx.Where("identifier = ?", identifier).First(&window).Error
	})
	if err != nil {
		// Fail closed.
		return RateLimitResult{Allowed: false, ResetAt: now.Add(r.Window)}, err
	}

	remaining := r.Max - window.Count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   window.Count <= r.Max,
		Remaining: remaining,
		ResetAt:   window.WindowStart.Add(r.Window),
	}, nil
}
