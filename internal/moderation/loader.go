package moderation

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// patternDoc is the on-disk shape of one entry in a moderation pattern file.
// The file is decoded as plain JSON and each regex compiled; it is not
// validated against a JSON Schema.
type patternDoc struct {
	Kind        string `json:"kind"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// LoadPatternsFile reads a JSON array of pattern documents and compiles each
// regex, failing fast on the first invalid entry.
func LoadPatternsFile(path string) ([]Pattern, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("moderation: read patterns file: %w", err)
	}
	var docs []patternDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("moderation: decode patterns file: %w", err)
	}
	out := make([]Pattern, 0, len(docs))
	for i, d := range docs {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("moderation: pattern %d (%s): %w", i, d.Kind, err)
		}
		out = append(out, Pattern{Kind: Kind(d.Kind), Regex: re, Replacement: d.Replacement})
	}
	return out, nil
}
