package orders

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber formats ORD-<unix millis>-<5 random base36 chars>.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = numberAlphabet[rand.IntN(len(numberAlphabet))]
	}
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
}
