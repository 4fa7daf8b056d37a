package services

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

// tokenParams are the query/fragment keys a verification link may carry
// its token under, in lookup order.
var tokenParams = []string{"token", "token_hash", "access_token", "confirmation_token", "code"}

// ExtractToken pulls a verification token out of whatever the user pasted:
// a full link with the token in its query string or in its #fragment, a
// bare query string, or the token itself.
func ExtractToken(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if !strings.ContainsAny(input, "?#=") {
		return input
	}

	query, fragment := input, ""
	if i := strings.Index(query, "#"); i >= 0 {
		query, fragment = query[:i], query[i+1:]
	}
	if i := strings.Index(query, "?"); i >= 0 {
		query = query[i+1:]
	} else if !strings.Contains(query, "=") {
		query = ""
	}
	// hash-routed links: #/verify?token=...
	if i := strings.Index(fragment, "?"); i >= 0 {
		fragment = fragment[i+1:]
	}

	for _, raw := range []string{query, fragment} {
		values, err := url.ParseQuery(raw)
		if err != nil {
			continue
		}
		for _, key := range tokenParams {
			if v := strings.TrimSpace(values.Get(key)); v != "" {
				return v
			}
		}
	}
	return ""
}

// LooksLikeJWT reports whether s has the three dot-separated segments of a
// compact JWS.
func LooksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// generateCode returns a zero-padded numeric one-time code.
func generateCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
