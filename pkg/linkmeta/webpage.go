package linkmeta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the display metadata of a web page.
type Page struct {
	Title    string
	ImageURL string
}

// PageFetcher reads the head of web pages for their title and preview image.
type PageFetcher struct {
	client *http.Client
}

func NewPageFetcher(timeout time.Duration) *PageFetcher {
	return &PageFetcher{client: newHTTPClient(timeout)}
}

// Fetch returns the page's og:title, falling back to <title>. The image is
// og:image resolved against the page URL. A page without either yields an
// empty Page, not an error.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	header := http.Header{}
	header.Set("User-Agent", commonUserAgent)
	header.Set("Accept", commonAcceptHeader)

	body, err := get(ctx, f.client, pageURL, header, maxPageBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() {
		_ = body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return parsePage(doc, pageURL), nil
}

func parsePage(doc *goquery.Document, pageURL string) *Page {
	page := &Page{
		Title:    metaContent(doc, "og:title"),
		ImageURL: metaContent(doc, "og:image"),
	}
	if page.Title == "" {
		page.Title = collapseSpace(doc.Find("head title").First().Text())
	}
	if page.Title == "" {
		page.Title = collapseSpace(doc.Find("title").First().Text())
	}
	if page.ImageURL != "" {
		page.ImageURL = resolveReference(pageURL, page.ImageURL)
	}
	return page
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First()
	if sel.Length() == 0 {
		sel = doc.Find(fmt.Sprintf(`meta[name=%q]`, property)).First()
	}
	content, _ := sel.Attr("content")
	return collapseSpace(content)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveReference(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
