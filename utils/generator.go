package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const referenceSuffixLength = 6
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMu     sync.Mutex
)

// GenerateTransactionReference returns a reference like TXN-1718000000000-K3F9QZ.
// Uniqueness is enforced by the index on booking_payments.transaction_reference.
func GenerateTransactionReference(now time.Time) string {
	b := make([]byte, referenceSuffixLength)
	randMu.Lock()
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	randMu.Unlock()
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), string(b))
}
