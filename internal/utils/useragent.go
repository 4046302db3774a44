package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
	Raw        string `json:"raw"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		Raw:        userAgent,
		IsBot:      parser.Bot(),
		OS:         parsedOS(parser),
		Browser:    parsedBrowser(parser),
		BrowserVer: parsedBrowserVersion(parser),
		Platform:   parsedPlatform(parser),
		DeviceType: parsedDeviceType(parser),
	}

	return info
}

func parsedDeviceType(parser *ua.UserAgent) string {
	if parser.Mobile() {
		if isTablet(parser.UA()) {
			return "tablet"
		}
		return "mobile"
	}
	return "desktop"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, indicator := range []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t", "tab"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func parsedOS(parser *ua.UserAgent) string {
	osInfo := parser.OSInfo()
	if osInfo.Name == "" {
		return "Unknown"
	}
	if osInfo.Version != "" {
		return osInfo.Name + " " + osInfo.Version
	}
	return osInfo.Name
}

func parsedBrowser(parser *ua.UserAgent) string {
	name, _ := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	return name
}

func parsedBrowserVersion(parser *ua.UserAgent) string {
	_, version := parser.Browser()
	return version
}

func parsedPlatform(parser *ua.UserAgent) string {
	osName := strings.ToLower(parser.OSInfo().Name)

	platforms := map[string]string{
		"android":   "android",
		"ios":       "ios",
		"iphone os": "ios",
		"windows":   "windows",
		"mac os x":  "mac",
		"macos":     "mac",
		"linux":     "linux",
		"ubuntu":    "linux",
		"chrome os": "chromeos",
	}

	for key, platform := range platforms {
		if strings.Contains(osName, key) {
			return platform
		}
	}

	return "unknown"
}
