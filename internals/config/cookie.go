package config

// CookieConfig is the shared security baseline for every cookie the service
// issues
type CookieConfig struct {
	// Domain for the cookies
	Domain string
	// IsSecure marks cookies as Secure (HTTPS only)
	IsSecure bool
	// HttpOnly keeps cookies out of reach of page scripts
	HttpOnly bool
}
