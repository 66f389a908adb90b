package handlers

import "strconv"

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
