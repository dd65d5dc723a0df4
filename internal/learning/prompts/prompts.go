package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Prompt is a rendered system/user pair plus the output contract it embeds.
type Prompt struct {
	Name       string
	Version    int
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// Fingerprint is stable for a given name, version, contract and rendered text.
// Generation spans carry it so two runs that sent the same prompt can be matched.
func (p Prompt) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{p.Name, strconv.Itoa(p.Version), p.SchemaName, p.System, p.User} {
		h.Write([]byte(strings.TrimSpace(part)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
