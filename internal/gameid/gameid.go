// Package gameid mints session identifiers: a UUIDv7 rendered as 26
// lowercase Crockford base32 characters, so IDs sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, lowercased.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator mints IDs from an optional entropy source.
type Generator struct {
	entropy io.Reader
}

// NewGenerator returns a generator reading random bits from entropy, or from
// crypto/rand when entropy is nil.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ID from crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new ID.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate game id: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are read
// five at a time with two zero bits of padding at the end.
func Encode(id uuid.UUID) string {
	out := make([]byte, 26)
	for i := range out {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if bitIndex <= 3 {
			value = (id[byteIndex] >> (3 - bitIndex)) & 0x1f
		} else {
			value = (id[byteIndex] << (bitIndex - 3)) & 0x1f
			if byteIndex+1 < len(id) {
				value |= id[byteIndex+1] >> (11 - bitIndex)
			}
		}
		out[i] = alphabet[value]
	}
	return string(out)
}

// Validate checks that id has the shape produced by Generate.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game ID must be exactly 26 characters, got %d", len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	// The last character only carries three real bits followed by padding.
	if strings.IndexByte(alphabet, id[25])&0x3 != 0 {
		return fmt.Errorf("game ID has non-zero padding bits")
	}
	return nil
}
