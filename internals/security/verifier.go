package security

import (
	"errors"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// dummyHash is compared against when the email is unknown, so a miss costs
// the same bcrypt work as a mismatch and the two cases cannot be told apart
// by timing.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// CredentialVerifier checks the first factor. Unknown email and wrong
// password return the identical generic error; only an inactive account is
// allowed a distinct message, since it leaks nothing about the password.
type CredentialVerifier struct {
	DB *gorm.DB
}

func NewCredentialVerifier(db *gorm.DB) *CredentialVerifier {
	return &CredentialVerifier{DB: db}
}

func (v *CredentialVerifier) Verify(email, password string) (*models.Account, error) {
	var acct models.Account
	if err := v.DB.Where("email = ?", email).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, &FailureError{Class: ErrAuthentication, Reason: ReasonEmailNotFound}
		}
		return nil, &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}

	if !acct.Active {
		return nil, &FailureError{Class: ErrInactiveAccount, Reason: ReasonInactiveAccount}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(password)); err != nil {
		return nil, &FailureError{Class: ErrAuthentication, Reason: ReasonWrongPassword}
	}

	return &acct, nil
}
