package scraper

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/job-ranker/internal/postings"
)

const (
	Indeed     = "indeed"
	Glassdoor  = "glassdoor"
	LinkedIn   = "linkedin"
	Freelancer = "freelancer"
	Upwork     = "upwork"
)

// site describes how a single job board is queried and how its result cards
// are turned into postings.
type site struct {
	name     string
	platform string
	baseURL  string
	// searchURL builds the listing page address from the site root.
	searchURL func(base string, params *SearchParams) string
	cards     string
	parse     func(card *goquery.Selection, base string) *postings.Posting
}

// Platforms returns the supported platform names in scraping order.
func Platforms() []string {
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		names = append(names, s.name)
	}
	return names
}

func lookupSite(name string) *site {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range sites {
		if s.name == name {
			return s
		}
	}
	return nil
}

var sites = []*site{
	{
		name:     Indeed,
		platform: "Indeed",
		baseURL:  "https://www.indeed.com",
		searchURL: func(base string, params *SearchParams) string {
			q := url.Values{}
			q.Set("q", params.Query)
			q.Set("l", params.Location)
			return base + "/jobs?" + q.Encode()
		},
		cards: "div.job_seen_beacon",
		parse: func(card *goquery.Selection, base string) *postings.Posting {
			title, company, location, desc := first(card, "h2.jobTitle"), first(card, "span.companyName"),
				first(card, "div.companyLocation"), first(card, "div.job-snippet")
			href, ok := first(card, "a[href]").Attr("href")
			if !found(title, company, location, desc) || !ok {
				return nil
			}
			return &postings.Posting{
				Title:       text(title),
				Company:     text(company),
				Location:    text(location),
				Description: text(desc),
				Snippet:     snippet(desc),
				URL:         base + href,
			}
		},
	},
	{
		name:     Glassdoor,
		platform: "Glassdoor",
		baseURL:  "https://www.glassdoor.com",
		searchURL: func(base string, params *SearchParams) string {
			q := url.Values{}
			q.Set("sc.keyword", params.Query)
			q.Set("locT", "C")
			q.Set("locId", "0")
			q.Set("locKeyword", params.Location)
			return base + "/Job/jobs.htm?" + q.Encode()
		},
		cards: "li.jl",
		parse: func(card *goquery.Selection, base string) *postings.Posting {
			title, company, location, desc := first(card, "a.jobLink"), first(card, "div.jobHeader"),
				first(card, "span.subtle.loc"), first(card, "div.jobDescriptionContent")
			href, ok := title.Attr("href")
			if !found(title, company, location, desc) || !ok || href == "" {
				return nil
			}
			return &postings.Posting{
				Title:       text(title),
				Company:     text(company),
				Location:    text(location),
				Description: text(desc),
				Snippet:     snippet(desc),
				URL:         base + href,
			}
		},
	},
	{
		name:     LinkedIn,
		platform: "LinkedIn",
		baseURL:  "https://www.linkedin.com",
		searchURL: func(base string, params *SearchParams) string {
			return base + "/jobs/search?keywords=" + escapeSpaces(params.Query) + "&location=" + escapeSpaces(params.Location)
		},
		cards: "li.result-card",
		parse: func(card *goquery.Selection, _ string) *postings.Posting {
			title, company, location := first(card, "h3.result-card__title"), first(card, "h4.result-card__subtitle"),
				first(card, "span.job-result-card__location")
			href, ok := first(card, "a[href]").Attr("href")
			if !found(title, company, location) || !ok {
				return nil
			}
			// Descriptions are only available on the posting page.
			return &postings.Posting{
				Title:    text(title),
				Company:  text(company),
				Location: text(location),
				URL:      href,
			}
		},
	},
	{
		name:     Freelancer,
		platform: "Freelancer",
		baseURL:  "https://www.freelancer.com",
		searchURL: func(base string, params *SearchParams) string {
			return base + "/jobs/" + url.PathEscape(strings.ReplaceAll(params.Query, " ", "-")) + "/"
		},
		cards: "div.JobSearchCard-item",
		parse: func(card *goquery.Selection, base string) *postings.Posting {
			title, desc := first(card, "a.JobSearchCard-primary-heading-link"), first(card, "p.JobSearchCard-primary-description")
			href, ok := title.Attr("href")
			if !found(title, desc) || !ok || href == "" {
				return nil
			}
			return &postings.Posting{
				Title:       text(title),
				Company:     "Freelancer",
				Description: text(desc),
				Snippet:     snippet(desc),
				URL:         base + href,
			}
		},
	},
	{
		name:     Upwork,
		platform: "Upwork",
		baseURL:  "https://www.upwork.com",
		searchURL: func(base string, params *SearchParams) string {
			return base + "/search/jobs/?q=" + escapeSpaces(params.Query)
		},
		cards: "section.air-card-hover",
		parse: func(card *goquery.Selection, _ string) *postings.Posting {
			title, desc := first(card, "h4.job-title"), first(card, "span.break-word")
			href, ok := first(card, "a[href]").Attr("href")
			if !found(title, desc) || !ok {
				return nil
			}
			return &postings.Posting{
				Title:       text(title),
				Company:     "Upwork",
				Description: text(desc),
				Snippet:     snippet(desc),
				URL:         href,
			}
		},
	},
}

func first(card *goquery.Selection, selector string) *goquery.Selection {
	return card.Find(selector).First()
}

func found(selections ...*goquery.Selection) bool {
	for _, s := range selections {
		if s.Length() == 0 {
			return false
		}
	}
	return true
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// snippet keeps the structure of rich snippets (lists, paragraphs, links) as
// markdown for display. Ranking uses the plain text only.
func snippet(s *goquery.Selection) string {
	inner, err := s.Html()
	if err != nil || strings.TrimSpace(inner) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// escapeSpaces query-escapes s using %20 for spaces.
func escapeSpaces(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
