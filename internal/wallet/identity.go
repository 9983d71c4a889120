package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeriveOrganizerId maps a wallet address to a deterministic UUID-shaped
// organizer id: SHA-256 of the lowercased address, first 32 hex chars
// formatted 8-4-4-4-12. The same wallet always resolves to the same id.
func DeriveOrganizerId(walletAddress string) string {
	normalized := strings.ToLower(walletAddress)

	sum := sha256.Sum256([]byte(normalized))
	hexDigest := hex.EncodeToString(sum[:])[:32]

	return hexDigest[:8] + "-" +
		hexDigest[8:12] + "-" +
		hexDigest[12:16] + "-" +
		hexDigest[16:20] + "-" +
		hexDigest[20:32]
}
