package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mitchellh/hashstructure"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// DomainSQL prefixes SQL digests. The version suffix allows a later change
// of algorithm without colliding with stored digests.
const DomainSQL = "ddmview/sql/v1"

// fingerprint is what SpecHash hashes: the kind keeps structurally equal
// statements of different kinds apart.
type fingerprint struct {
	Kind      string
	Statement viewspec.Statement
}

// SpecHash returns a stable hash of a statement's content.
func SpecHash(stmt viewspec.Statement) (string, error) {
	h, err := hashstructure.Hash(fingerprint{Kind: viewspec.Kind(stmt), Statement: stmt}, nil)
	if err != nil {
		return "", fmt.Errorf("hash statement: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// SQLDigest computes the SHA-256 digest of a compiled script with domain
// separation.
// Format: SHA256(domain + 0x00 + sql)
func SQLDigest(sql string) string {
	h := sha256.New()
	h.Write([]byte(DomainSQL))
	h.Write([]byte{0x00})
	h.Write([]byte(sql))
	return hex.EncodeToString(h.Sum(nil))
}
