package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payload is one raw API response kept for replay and audit.
// EntityKey is the request identity, e.g. "team/2024-25/Base" or
// "boxscore/boxscoretraditionalv2/0022300001".
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	Season      string
	Endpoint    string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

// HashPayload fingerprints a response body so unchanged payloads can
// be skipped on upsert.
func HashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
