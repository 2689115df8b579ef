package postings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	URL        string
	Title      string
	Company    string
	ExcludedAt time.Time
}

func (v *Postings) ToExcluded() *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, posting := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			URL:        posting.URL,
			Title:      posting.Title,
			Company:    posting.Company,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file is an
// empty list, so the first append can create it.
func GetExcludedFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedPostings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose url is not in the list yet.
func (v *ExcludedPostings) Append(s *ExcludedPostings) {
	known := make(map[string]struct{}, len(v.Items))
	for _, item := range v.Items {
		known[item.URL] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.URL]; ok {
			continue
		}
		known[item.URL] = struct{}{}
		v.Items = append(v.Items, item)
	}
}

func (v *ExcludedPostings) URLs() []string {
	urls := make([]string, 0, len(v.Items))
	for _, posting := range v.Items {
		urls = append(urls, posting.URL)
	}
	return urls
}

func (v *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
