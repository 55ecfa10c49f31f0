package auth

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceName summarizes a User-Agent as "Browser on OS" for audit logs.
func DeviceName(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
