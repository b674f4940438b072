package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// parseAssignments turns key=value pairs into a partial payload. A value that
// parses as JSON keeps its JSON type; anything else is stored as a string.
func parseAssignments(pairs []string) (domain.Payload, error) {
	if len(pairs) == 0 {
		return nil, errors.New("nothing to update: pass --set key=value")
	}
	out := make(domain.Payload, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}
