package postings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

type Item interface{}

// FromFile loads postings from a JSON file. Both a bare array of objects and
// an object with an "items" array are accepted.
func FromFile(path string) (*Postings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing postings file %q: %w", path, err)
	}

	var items []Item
	switch typed := raw.(type) {
	case []any:
		for _, item := range typed {
			items = append(items, item)
		}
	case map[string]any:
		list, ok := typed["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("postings file %q: expected an array or an object with items", path)
		}
		for _, item := range list {
			items = append(items, item)
		}
	default:
		return nil, fmt.Errorf("postings file %q: expected an array or an object with items", path)
	}

	return Decode(items)
}

// Decode converts loosely typed items into postings. Scalars are converted to
// strings where needed and missing keys stay empty.
func Decode(items []Item) (*Postings, error) {
	var decoded []*Posting

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &decoded,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding postings: %w", err)
	}

	result := &Postings{Items: make([]*Posting, 0, len(decoded))}
	for _, posting := range decoded {
		if posting == nil {
			continue
		}
		result.Items = append(result.Items, posting)
	}

	return result, nil
}
