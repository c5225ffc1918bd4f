package web

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/zan8in/tcpscan/pkg/utils"
)

// context keys
type ctxKey string

const (
	ctxUserID    ctxKey = "user_id"
	ctxLoginTime ctxKey = "login_time"
)

func GetUserIDFromContext(r *http.Request) string {
	if v := r.Context().Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getClientIP(r *http.Request) string {
	// 仅在受信任反代环境下使用XFF/X-Real-IP
	if os.Getenv("TCPSCAN_TRUST_PROXY") == "1" {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func generateRandomPassword() string {
	return utils.RandLetterNumbers(32)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
