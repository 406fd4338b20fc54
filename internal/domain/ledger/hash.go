package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalTime is the timestamp form stored and hashed: UTC, microsecond precision.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ComputeHash returns lowercase hex SHA-256 of prev|ref|amount|dest|timestamp.
// prev is "" for genesis. Amount always carries two decimals.
func ComputeHash(prev, referenceID string, amount decimal.Decimal, destination string, ts time.Time) string {
	payload := strings.Join([]string{
		prev,
		referenceID,
		amount.StringFixed(2),
		destination,
		CanonicalTime(ts).Format(time.RFC3339Nano),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Recompute hashes e against its own stored prev_hash.
func (e *Entry) Recompute() string {
	return ComputeHash(e.PrevHash.String, e.ReferenceID, e.Amount, e.Destination, e.Timestamp)
}
