package artifact

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/vtprecheck/internal/model"
)

// Digest returns the hex SHA3-256 digest of everything the precondition
// checks look at: each function's entry, no-return flag and whether a decoded
// instruction exists at the entry, in enumeration order. Names are left out
// so renaming symbols does not change the digest.
func Digest(a model.Artifact) string {
	h := sha3.New256()
	var buf [10]byte
	for fn := range a.Functions() {
		binary.BigEndian.PutUint64(buf[:8], uint64(fn.Entry))
		buf[8] = boolByte(fn.NoReturn)
		buf[9] = boolByte(a.HasInstructionAt(fn.Entry))
		_, _ = h.Write(buf[:]) //nolint:errcheck // hash.Hash never returns an error
	}
	return hex.EncodeToString(h.Sum(nil))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
