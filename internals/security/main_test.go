package security

import (
	"path/filepath"
	"testing"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh migrated sqlite database in the test's temp dir.
// A single open connection keeps concurrent tests from tripping over
// SQLITE_BUSY without weakening what the tests prove.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "auth.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.LoginAttempt{},
		&models.RateLimitWindow{},
		&models.OTPChallenge{},
		&models.Session{},
	))
	return db
}

// stubMailer captures dispatched codes instead of talking SMTP.
type stubMailer struct {
	to    []string
	codes []string
	fail  bool
}

func (m *stubMailer) SendLoginCode(to, code string) error {
	if m.fail {
		return errAlwaysFail
	}
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	return nil
}

func (m *stubMailer) lastCode() string {
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}

var errAlwaysFail = &FailureError{Class: ErrDelivery, Reason: "stub failure"}
