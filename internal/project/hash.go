package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш содержимого файла.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine строит составной хеш: H( first || rest... ).
// Порядок аргументов должен быть детерминированным.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
