package routing

import (
	"strings"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
)

// ResolveSurface picks the caller's declared surface. Verified claims win whenever they
// carry a non-empty user type, even when the cookie disagrees; the cookie is read only when
// the claims have none. An unrecognized value yields SurfaceUnknown.
func ResolveSurface(claimsUserType, cookieUserType string) domain.Surface {
	if strings.TrimSpace(claimsUserType) != "" {
		return domain.ParseSurface(claimsUserType)
	}
	return domain.ParseSurface(cookieUserType)
}
