// Package device classifies viewports and reports device-class changes.
package device

import (
	"strings"

	"github.com/AnyUserName/wallgen/internal/series"
)

// Breakpoints in CSS pixels.
const (
	SM = 576  // small phones
	MD = 768  // mobile/desktop boundary
	LG = 992  // small desktop
	XL = 1200 // large desktop
)

// DefaultWidth is assumed when no viewport width is known.
const DefaultWidth = 1024

// Classify returns series.DeviceMobile for widths below MD and
// series.DeviceDesktop otherwise.
func Classify(width int) string {
	if width < MD {
		return series.DeviceMobile
	}
	return series.DeviceDesktop
}

// IsMobile reports whether width classifies as mobile.
func IsMobile(width int) bool { return Classify(width) == series.DeviceMobile }

func IsSmallMobile(width int) bool  { return width < SM }
func IsTabletSize(width int) bool   { return width >= MD && width < LG }
func IsLargeDesktop(width int) bool { return width >= XL }

// Hint kinds returned by FromUserAgent.
const (
	HintMobile  = "mobile"
	HintTablet  = "tablet"
	HintDesktop = "desktop"
)

var (
	tabletKeywords = []string{"ipad", "tablet", "playbook", "silk"}
	mobileKeywords = []string{"android", "webos", "iphone", "ipod", "blackberry", "iemobile", "opera mini", "mobile"}
)

// FromUserAgent guesses the device kind from a User-Agent header. It is a
// hint only; width decides the class whenever it is known.
func FromUserAgent(ua string) string {
	ua = strings.ToLower(ua)
	if ua == "" {
		return HintDesktop
	}
	for _, k := range tabletKeywords {
		if strings.Contains(ua, k) {
			return HintTablet
		}
	}
	for _, k := range mobileKeywords {
		if strings.Contains(ua, k) {
			// Android tablets usually omit "mobile".
			if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
				return HintTablet
			}
			return HintMobile
		}
	}
	return HintDesktop
}

// GuessWidth maps a User-Agent hint to a representative viewport width.
func GuessWidth(ua string) int {
	if FromUserAgent(ua) == HintMobile {
		return 390
	}
	return DefaultWidth
}
