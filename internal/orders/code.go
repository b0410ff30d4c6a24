package orders

import (
	"fmt"
	"math/rand"
	"time"
)

const orderCodePrefix = "ORD"

// CodeGenerator produces a human-readable order code for the given moment.
type CodeGenerator func(now time.Time) string

// RandomCode renders ORD-YYYYMMDD-NNNN with a random four digit suffix.
func RandomCode(now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", orderCodePrefix, now.Format("20060102"), rand.Intn(9999)+1)
}
