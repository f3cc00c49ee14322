package main

import "strings"

var escapes = strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n", `\t`, "\t")

// unescape turns the \r \n \t \\ sequences a shell passes literally into
// control characters, so SHIORI requests can be typed on one line.
func unescape(s string) string {
	return escapes.Replace(s)
}
