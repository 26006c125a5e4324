package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/oncopulse/newsletter/pkg/state"
)

// FeedRetriever crawls a fixed set of RSS/Atom journal feeds, matching
// entries against the topic's keywords, and converts each entry's body
// HTML to Markdown for downstream summarization. Built on a
// collector-with-callbacks crawler shape; the feed list itself is
// configuration, not hardcoded.
type FeedRetriever struct {
	feedURLs []string
	timeout  time.Duration
}

// NewFeedRetriever builds a retriever over a fixed list of feed URLs.
func NewFeedRetriever(feedURLs []string) *FeedRetriever {
	return &FeedRetriever{feedURLs: feedURLs, timeout: 20 * time.Second}
}

func (f *FeedRetriever) Name() string { return "feed" }

func (f *FeedRetriever) Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int) ([]state.Article, error) {
	if len(f.feedURLs) == 0 {
		return nil, nil
	}

	keywords := matchTerms(topic)

	var mu sync.Mutex
	var articles []state.Article
	var firstErr error

	collector := colly.NewCollector(colly.Async(true))
	collector.SetRequestTimeout(f.timeout)
	_ = collector.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 4})

	collector.OnXML("//item", func(e *colly.XMLElement) {
		handleFeedEntry(e.ChildText("title"), e.ChildText("link"), e.ChildText("description"), e.ChildText("pubDate"), keywords, &mu, &articles, maxResults)
	})
	collector.OnXML("//entry", func(e *colly.XMLElement) {
		link := e.ChildAttr("link", "href")
		handleFeedEntry(e.ChildText("title"), link, e.ChildText("summary"), e.ChildText("published"), keywords, &mu, &articles, maxResults)
	})
	collector.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", r.Request.URL, err)
		}
		mu.Unlock()
	})

	for _, feedURL := range f.feedURLs {
		if err := collector.Visit(feedURL); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}
	collector.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(articles) == 0 && firstErr != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrSource, firstErr)
	}
	return articles, nil
}

func handleFeedEntry(title, link, description, pubDate string, keywords []string, mu *sync.Mutex, articles *[]state.Article, maxResults int) {
	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	if title == "" || link == "" {
		return
	}
	if !matchesKeywords(title+" "+description, keywords) {
		return
	}

	markdown := htmlToMarkdown(description)
	source := "journal-feed"
	var published *time.Time
	if t, ok := ParseDate(pubDate); ok {
		published = &t
	}

	article, err := state.NewArticle(title, link, &source, &markdown, nil, published)
	if err != nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*articles) < maxResults*4 {
		*articles = append(*articles, article)
	}
}

func matchTerms(topic state.TopicConfig) []string {
	terms := append([]string{topic.Name}, topic.Keywords...)
	for i, t := range terms {
		terms[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return terms
}

func matchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// htmlToMarkdown strips HTML tags from a feed description down to plain
// markdown. Falls back to goquery-only text extraction if the converter
// returns nothing usable (some feeds emit already-escaped plain text).
func htmlToMarkdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err == nil && strings.TrimSpace(md) != "" {
		return strings.TrimSpace(md)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}
