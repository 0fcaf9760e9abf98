package params

import "strings"

// roomDeviceMarkers identify browsers embedded in Cisco room devices.
var roomDeviceMarkers = []string{
	"Cisco Room Navigator",
	"RoomOS",
}

// IsRoomDevice reports whether userAgent belongs to a known Cisco room
// device family.
func IsRoomDevice(userAgent string) bool {
	for _, marker := range roomDeviceMarkers {
		if strings.Contains(userAgent, marker) {
			return true
		}
	}
	return false
}

// ShowQR decides QR code visibility. An explicit qr parameter wins;
// otherwise the code is shown only on room devices, where visitors cannot
// easily take the page with them.
func ShowQR(q Query, userAgent string) bool {
	switch q.QR {
	case True:
		return true
	case False:
		return false
	default:
		return IsRoomDevice(userAgent)
	}
}

// AutoCloseEnabled decides whether the player closes itself after
// inactivity. An explicit timeout parameter wins; otherwise only unattended
// room devices get it.
func AutoCloseEnabled(q Query, userAgent string) bool {
	switch q.Timeout {
	case True:
		return true
	case False:
		return false
	default:
		return IsRoomDevice(userAgent)
	}
}
