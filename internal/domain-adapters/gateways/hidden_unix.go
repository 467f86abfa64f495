//go:build !windows

package gateways

import "strings"

func isHidden(_ string, name string) bool {
	return strings.HasPrefix(name, ".")
}
