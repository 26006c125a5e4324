package retrieval

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

const (
	pubmedESearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedEFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedRetriever fetches candidate articles via NCBI's two-step
// E-utilities flow: esearch for matching PMIDs, then efetch for their
// abstracts. No Go SDK for PubMed exists anywhere in the reference corpus,
// so this talks to the XML API directly with net/http + encoding/xml
// rather than inventing a dependency the corpus never shows.
type PubMedRetriever struct {
	httpClient *http.Client
	apiKeyEnv  string
}

// NewPubMedRetriever builds a retriever using http.DefaultClient's
// transport settings with an explicit timeout to bound outbound calls.
func NewPubMedRetriever() *PubMedRetriever {
	return &PubMedRetriever{
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *PubMedRetriever) Name() string { return "pubmed" }

type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	IDList  struct {
		IDs []string `xml:"Id"`
	} `xml:"IdList"`
}

type eFetchResult struct {
	XMLName xml.Name `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			ArticleTitle string `xml:"ArticleTitle"`
			Abstract     struct {
				AbstractText []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Journal struct {
				JournalIssue struct {
					PubDate struct {
						Year  string `xml:"Year"`
						Month string `xml:"Month"`
						Day   string `xml:"Day"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
				Title string `xml:"Title"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

func (p *PubMedRetriever) Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int) ([]state.Article, error) {
	ids, err := p.search(ctx, topic.Query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: pubmed search: %v", state.ErrSource, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	fetched, err := p.fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: pubmed fetch: %v", state.ErrSource, err)
	}

	articles := make([]state.Article, 0, len(fetched.Articles))
	for _, a := range fetched.Articles {
		title := strings.TrimSpace(a.MedlineCitation.Article.ArticleTitle)
		abstract := strings.Join(a.MedlineCitation.Article.Abstract.AbstractText, " ")
		pmid := strings.TrimSpace(a.MedlineCitation.PMID)
		if pmid == "" || title == "" {
			continue
		}
		articleURL := fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid)
		source := "PubMed"
		var content *string
		if abstract != "" {
			content = &abstract
		}

		var published *time.Time
		pd := a.MedlineCitation.Article.Journal.JournalIssue.PubDate
		if raw := strings.TrimSpace(strings.Join([]string{pd.Year, pd.Month, pd.Day}, " ")); raw != "" {
			if t, ok := ParseDate(strings.TrimSpace(raw)); ok {
				published = &t
			}
		}

		article, err := state.NewArticle(title, articleURL, &source, content, nil, published)
		if err != nil {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (p *PubMedRetriever) search(ctx context.Context, query string, maxResults int) ([]string, error) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("retmode", "json")
	q.Set("retmax", strconv.Itoa(maxResults))
	q.Set("term", query)

	var parsed struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := p.getJSON(ctx, pubmedESearchURL+"?"+q.Encode(), &parsed); err != nil {
		return nil, err
	}
	return parsed.ESearchResult.IDList, nil
}

func (p *PubMedRetriever) fetch(ctx context.Context, ids []string) (*eFetchResult, error) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("retmode", "xml")
	q.Set("id", strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedEFetchURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed eFetchResult
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (p *PubMedRetriever) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
