package scraper

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/utils"
)

type SearchParams struct {
	Query    string `mapstructure:"query" json:"query"`
	Location string `mapstructure:"location" json:"location"`
	// Platforms lists site names in scraping order. Empty means all of them.
	Platforms []string      `mapstructure:"platforms" json:"platforms"`
	Limit     int           `mapstructure:"limit" json:"limit"`
	Delay     time.Duration `mapstructure:"delay" json:"delay"`
}

// Scrape collects postings from every configured platform. A site that fails
// is logged and skipped; an unknown platform name is an error.
func (c *Client) Scrape(params *SearchParams) (*postings.Postings, error) {
	if params == nil {
		params = &SearchParams{}
	}

	names := params.Platforms
	if len(names) == 0 {
		names = Platforms()
	}

	selected := make([]*site, 0, len(names))
	for _, name := range names {
		s := lookupSite(name)
		if s == nil {
			return nil, fmt.Errorf("unknown platform %q (supported: %v)", name, Platforms())
		}
		selected = append(selected, s)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	result := &postings.Postings{}
	for i, s := range selected {
		if i > 0 {
			if err := utils.WaitFor(c.ctx, params.Delay); err != nil {
				return result, err
			}
		}

		log := logger.WithPlatform(c.logger, s.platform)

		items, err := c.scrapeSite(s, params, limit)
		if err != nil {
			log.Warn("skipping platform", zap.Error(err))
			continue
		}

		log.Info("scraped postings", zap.Int("count", len(items)))
		result.Items = append(result.Items, items...)
	}

	return result, nil
}

func (c *Client) scrapeSite(s *site, params *SearchParams, limit int) ([]*postings.Posting, error) {
	base := c.baseURL(s)

	doc, err := c.getDocument(s.searchURL(base, params))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.name, err)
	}

	var items []*postings.Posting
	doc.Find(s.cards).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		if item := s.parse(card, base); item != nil {
			item.Platform = s.platform
			items = append(items, item)
		}
		return true
	})

	return items, nil
}
