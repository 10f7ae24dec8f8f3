package graph

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// idTimestamp is the layout for the sortable timestamp prefix of generated
// transaction MUIDs and LIDs.
const idTimestamp = "20060102150405"

// NewMUID generates a fresh globally unique identifier (UUIDv4). Used when
// promoting a link to bind and for UUID-backfill operations.
func NewMUID() string {
	return uuid.NewString()
}

// NewTransactionMUID generates a transaction identifier of the form
// t_<YYYYMMDDHHMMSS>_<8 hex>.
func NewTransactionMUID(now time.Time) string {
	return "t_" + now.Format(idTimestamp) + "_" + randomHex(4)
}

// NewLID generates a locally unique identifier for a link relation, of the
// form l_<YYYYMMDDHHMMSS>_<4 hex>.
func NewLID(now time.Time) string {
	return "l_" + now.Format(idTimestamp) + "_" + randomHex(2)
}

// IsUUID reports whether value parses as a canonical UUID.
func IsUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
