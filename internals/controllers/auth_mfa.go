package controllers

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"net/http"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// MFAController lets a signed-in account bind a TOTP authenticator app as an
// alternative second factor to the emailed code.
type MFAController struct {
	DB *gorm.DB
	// AppName is the TOTP issuer shown in the authenticator app
	AppName       string
	EncryptionKey string
}

func NewMFAController(db *gorm.DB, appName string, encryptionKey string) *MFAController {
	return &MFAController{
		DB:            db,
		AppName:       appName,
		EncryptionKey: encryptionKey,
	}
}

func (m *MFAController) Setup2FA(c *gin.Context) {
	acct, ok := currentAccount(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.AppName,
		AccountName: acct.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate 2FA key"})
		return
	}

	// The secret is stored encrypted; the plaintext only ever travels in
	// this response
	encryptedSecret, err := utils.Encrypt(key.Secret(), m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encrypt 2FA secret"})
		return
	}

	if err := m.DB.Model(&acct).Update("totp_secret", encryptedSecret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store 2FA secret"})
		return
	}

	// QR code as an inline Base64 image
	img, _ := key.Image(200, 200)
	var buf bytes.Buffer
	png.Encode(&buf, img)
	imgBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	c.JSON(http.StatusOK, gin.H{
		"secret":      key.Secret(),
		"qr_code_url": "data:image/png;base64," + imgBase64,
	})
}

func (m *MFAController) Activate2FA(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A verification code is required"})
		return
	}

	acct, ok := currentAccount(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	decryptedSecret, err := utils.Decrypt(acct.TOTPSecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrypt 2FA secret"})
		return
	}

	if !totp.Validate(body.Code, decryptedSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}

	if err := m.DB.Model(&acct).Update("totp_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate 2FA"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA activated successfully"})
}
