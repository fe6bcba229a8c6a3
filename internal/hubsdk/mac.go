package hubsdk

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var bareMAC = regexp.MustCompile(`^[0-9A-Fa-f]{12}$`)

// NormalizeMAC converts a MAC address in any common notation (colon, dash or
// dot separated, or 12 bare hex digits) into the uppercase separator-free
// form the diagnostic login endpoint expects.
func NormalizeMAC(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if hw, err := net.ParseMAC(s); err == nil {
		return strings.ToUpper(strings.ReplaceAll(hw.String(), ":", "")), nil
	}
	if bareMAC.MatchString(s) {
		return strings.ToUpper(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMAC, raw)
}
