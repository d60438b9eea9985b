// Package entropy seeds pseudo random generators.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// ErrUnavailable is returned when neither the entropy source nor the clock yields a seed.
var ErrUnavailable = errors.New("no random seed available")

// Reader is the entropy source. It is a variable so that tests can replace it.
var Reader io.Reader = crand.Reader

// Clock is the fallback seed source.
var Clock = func() int64 { return time.Now().UnixNano() }

// Seed returns a seed read from Reader, falling back to Clock.
func Seed() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(Reader, b[:]); err == nil {
		return int64(binary.LittleEndian.Uint64(b[:])), nil
	}
	if seed := Clock(); seed != 0 {
		return seed, nil
	}
	return 0, errors.WithStack(ErrUnavailable)
}

// New returns a *rand.Rand seeded by Seed.
func New() (*rand.Rand, error) {
	seed, err := Seed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}
