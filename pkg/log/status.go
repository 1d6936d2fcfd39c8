package log

import "fmt"

// statusHex formats a status code as 0x-prefixed hex.
func statusHex(code uint32) string {
	return fmt.Sprintf("0x%08X", code)
}
