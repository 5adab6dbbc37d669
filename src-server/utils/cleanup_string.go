package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// strips spaces, folds compatibility characters (NFKC) so look-alike usernames collide
func CleanupUsername(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}
