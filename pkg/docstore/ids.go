package docstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand/v2"

	"github.com/eternalheli/apollodocs/pkg/clock"
)

// randRead is swapped in tests to exercise the fallback path.
var randRead = rand.Read

// NewID returns an id of the form d_<unixms>_<32 hex>.
func NewID(c clock.Clock) string {
	now := c.Now()
	buf := make([]byte, 16)
	if _, err := randRead(buf); err != nil {
		r := mrand.New(mrand.NewPCG(uint64(now.UnixNano()), mrand.Uint64()))
		for i := range buf {
			buf[i] = byte(r.UintN(256))
		}
	}
	return fmt.Sprintf("d_%d_%s", now.UnixMilli(), hex.EncodeToString(buf))
}
