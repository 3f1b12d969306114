package domain

import (
	"fmt"
	"strings"
)

// Tool is a lead scraping provider reachable through the backend.
type Tool string

const (
	ToolApollo        Tool = "apollo"
	ToolApify         Tool = "apify"
	ToolPhantombuster Tool = "phantombuster"
)

var Tools = []Tool{ToolApollo, ToolApify, ToolPhantombuster}

func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ToolApollo, ToolApify, ToolPhantombuster:
		return t, nil
	}
	return "", fmt.Errorf("unknown scraping tool %q", s)
}

func (t Tool) Label() string {
	switch t {
	case ToolApollo:
		return "Apollo.io"
	case ToolApify:
		return "Apify"
	case ToolPhantombuster:
		return "PhantomBuster"
	}
	return string(t)
}

// Filter keys that carry provider credentials. They are sent to the backend
// but never persisted or echoed back.
var sensitiveFilters = map[string]bool{
	"sessionCookie": true,
}

func IsSensitiveFilter(key string) bool { return sensitiveFilters[key] }

// RedactFilters returns a copy of filters without credential fields.
func RedactFilters(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for k, v := range filters {
		if sensitiveFilters[k] {
			continue
		}
		out[k] = v
	}
	return out
}
