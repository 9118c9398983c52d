// Package ident generates the short record identifiers operators type back
// into !ubah and !hapus commands.
package ident

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Six characters keeps ids typeable on a phone keyboard. Collisions are
	// unlikely (36^6 combinations) and the store rechecks on creation.
	idLength = 6
)

// New returns a fresh 6-character uppercase alphanumeric identifier.
func New() string {
	buf := make([]byte, idLength)
	alphaLen := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; nothing sensible to do but give up.
			panic(err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}
