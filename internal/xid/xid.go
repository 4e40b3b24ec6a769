package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// tempPrefix marks ids of optimistic local records that have not been
// confirmed by the backend yet.
const tempPrefix = "tmp"

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// NewTemp returns a distinguishable id for an optimistic local record.
func NewTemp() string {
	return New(tempPrefix)
}

// IsTemp reports whether id was generated by NewTemp.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, tempPrefix+"-")
}
