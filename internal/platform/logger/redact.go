package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"
)

const redacted = "[REDACTED]"

// redactor rewrites log values by key. Credentials are replaced, user
// identifiers are salted and hashed, and generator payloads are clipped so a
// failed parse never dumps a whole roadmap into the log stream.
type redactor struct {
	enabled bool
	salt    string
	// maxPayload bounds values logged under payload keys; 0 disables clipping.
	maxPayload int
}

var (
	envOnce sync.Once
	envRed  *redactor
)

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// envRedactor is read once per process from LOG_REDACTION_ENABLED and
// LOG_HASH_SALT.
func envRedactor() *redactor {
	envOnce.Do(func() {
		r := &redactor{enabled: true, salt: envString("LOG_HASH_SALT"), maxPayload: 512}
		switch strings.ToLower(envString("LOG_REDACTION_ENABLED")) {
		case "0", "false", "no", "off":
			r.enabled = false
		}
		envRed = r
	})
	return envRed
}

var (
	secretKeys  = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"}
	hashedKeys  = []string{"user_id", "email"}
	payloadKeys = []string{"raw", "llm_output", "prompt", "excerpt"}
)

func (r *redactor) apply(kv []interface{}) []interface{} {
	if r == nil || !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := stringify(kv[i])
		out = append(out, name, r.value(strings.ToLower(strings.TrimSpace(name)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r *redactor) value(key string, val interface{}) interface{} {
	switch {
	case key == "", strings.HasSuffix(key, "_tokens"):
		// usage counters such as output_tokens
		return val
	case containsAny(key, secretKeys):
		return redacted
	case containsAny(key, hashedKeys):
		return r.hash(val)
	case containsAny(key, payloadKeys):
		return r.clip(stringify(val))
	}
	switch v := val.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, inner := range v {
			m[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return m
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func (r *redactor) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func (r *redactor) clip(s string) string {
	if r.maxPayload <= 0 || len(s) <= r.maxPayload {
		return s
	}
	cut := r.maxPayload
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:cut], len(s))
}

func containsAny(key string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
