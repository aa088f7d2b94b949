package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Len is the number of hex characters kept from the 64-bit digest.
const Len = 16

// Sum returns the xxHash64 of data as a hex string truncated to hexLen
// characters (0 keeps the full 16).
func Sum(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// File streams the file at path through xxHash64. Catalog entries use it
// as a content fingerprint for locally scanned images.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return format(h.Sum64(), Len), nil
}

func format(v uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
