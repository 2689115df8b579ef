package scraper

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/logger"
)

const (
	userAgent = "Mozilla/5.0"
	// Cards taken from every site when SearchParams.Limit is not set.
	defaultLimit = 5
)

type Client struct {
	// ctx used for http requests and waits between sites
	ctx        context.Context
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	// BaseURLs overrides the site root per platform name.
	BaseURLs map[string]string
}

func New(ctx context.Context, log *zap.Logger) *Client {
	return &Client{
		ctx:    ctx,
		logger: logger.WithFields(log, zap.String("component", "scraper")),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		BaseURLs:  make(map[string]string),
	}
}

func (c *Client) baseURL(s *site) string {
	if base, ok := c.BaseURLs[s.name]; ok && base != "" {
		return base
	}
	return s.baseURL
}
