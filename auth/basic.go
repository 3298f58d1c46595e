// Package auth builds Authorization header values.
package auth

import (
	"encoding/base64"

	"golang.org/x/text/encoding/charmap"
)

// unmappable replaces runes that have no ISO-8859-1 representation.
const unmappable = '?'

// Basic returns the value of a Basic Authorization header for the given
// credentials: "Basic " followed by the base64 of "username:password"
// encoded as ISO-8859-1.
func Basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString(latin1(username+":"+password))
}

// latin1 encodes s as ISO-8859-1. Runes outside the charset become '?'.
func latin1(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = unmappable
		}
		b = append(b, c)
	}

	return b
}
