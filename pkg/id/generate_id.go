package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	PrefixTransfer = "TXN"
	PrefixVoucher  = "VCH"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewReference returns PREFIX-XXXXXXXXXXXXXXXX: 16 uppercase hex chars taken from the
// random half of a v4 UUID (62 bits of entropy).
func NewReference(prefix string) string {
	u := uuid.New()
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(u[8:16]))
}

// NewVoucherCode returns VCH-XXXXXXXXXXXX (48 bits of entropy).
func NewVoucherCode() string {
	u := uuid.New()
	return PrefixVoucher + "-" + strings.ToUpper(hex.EncodeToString(u[10:16]))
}
