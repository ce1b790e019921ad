package verification

import (
	"encoding/json"
	"strings"
	"unicode"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

var (
	confirmationWords = map[string]bool{
		"TRUE": true, "CONFIRMED": true, "VERIFIED": true,
		"VRAIE": true, "VRAI": true, "CONFIRMÉ": true, "CONFIRMÉE": true, "VÉRIFIÉ": true, "VÉRIFIÉE": true,
	}
	contradictionWords = map[string]bool{
		"FALSE": true, "INCORRECT": true, "ERRONEOUS": true,
		"FAUSSE": true, "FAUX": true, "ERRONÉ": true, "ERRONÉE": true,
	}
)

// StripCodeFences removes markdown ``` fences around a JSON body.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// decodeObject parses raw (fences allowed) into out. It rejects anything that
// is not a JSON object.
func decodeObject(raw string, out any) bool {
	body := StripCodeFences(raw)
	if !strings.HasPrefix(body, "{") {
		if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
			body = body[i : j+1]
		} else {
			return false
		}
	}
	return json.Unmarshal([]byte(body), out) == nil
}

// ScanVerdict is the keyword fallback used when a model reply is not valid JSON.
// Confirmation words win over contradiction words.
func ScanVerdict(raw string) string {
	words := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	hasConfirm, hasContra := false, false
	for _, w := range words {
		if confirmationWords[w] {
			hasConfirm = true
		}
		if contradictionWords[w] {
			hasContra = true
		}
	}
	switch {
	case hasConfirm:
		return types.VerdictTrue
	case hasContra:
		return types.VerdictFalse
	default:
		return types.VerdictUndetermined
	}
}

// normalizeClaimVerdict maps model verdict tokens (English or French) onto
// true/false/undetermined. ok is false for unknown tokens.
func normalizeClaimVerdict(v string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "TRUE", "VRAIE", "VRAI":
		return types.VerdictTrue, true
	case "FALSE", "FAUSSE", "FAUX":
		return types.VerdictFalse, true
	case "UNDETERMINED", "INDÉTERMINÉE", "INDETERMINEE", "UNCERTAIN":
		return types.VerdictUndetermined, true
	}
	return "", false
}

func normalizeDetectionVerdict(v string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "AI_DETECTED", "AI-DETECTED", "IA_DÉTECTÉE", "IA_DETECTEE":
		return types.ImageStatusAIDetected, true
	case "AUTHENTIC", "AUTHENTIQUE":
		return types.ImageStatusAuthentic, true
	case "UNCERTAIN", "INCERTAIN":
		return types.ImageStatusUncertain, true
	}
	return "", false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
