// Package extract fetches web pages and reduces them to readable article text.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/starford/ansuz/internal/apperr"
)

// untitled is used when a page has no title.
const untitled = "Unbenannte Quelle"

// Article is the readable part of a web page.
type Article struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// Extractor downloads pages over HTTP.
type Extractor struct {
	client   *http.Client
	maxBytes int64
}

// New creates an extractor with the given request timeout.
func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{client: &http.Client{Timeout: timeout}, maxBytes: 5 << 20}
}

// Extract fetches rawURL and returns its article text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) address", apperr.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("extract: create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ansuz/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: fetch %s: HTTP %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("extract: read body: %w", err)
	}
	art, err := Parse(string(body))
	if err != nil {
		return nil, err
	}
	return art, nil
}

// Parse extracts an Article from an HTML document.
func Parse(doc string) (*Article, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	art := &Article{}
	var titleTag string
	var article, main, body *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if titleTag == "" {
					titleTag = collapse(textOf(n))
				}
			case "meta":
				readMeta(n, art)
			case "article":
				if article == nil {
					article = n
				}
			case "main":
				if main == nil {
					main = n
				}
			case "body":
				body = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if art.Title == "" {
		art.Title = titleTag
	}
	if art.Title == "" {
		art.Title = untitled
	}

	for _, n := range []*html.Node{article, main, body} {
		if n == nil {
			continue
		}
		if text := readable(n); text != "" {
			art.Content = text
			break
		}
	}
	if art.Content == "" {
		return nil, fmt.Errorf("%w: no readable content found", apperr.ErrInvalidInput)
	}
	return art, nil
}

func readMeta(n *html.Node, art *Article) {
	key := strings.ToLower(attr(n, "name"))
	if key == "" {
		key = strings.ToLower(attr(n, "property"))
	}
	content := collapse(attr(n, "content"))
	if content == "" {
		return
	}
	switch key {
	case "og:title":
		art.Title = content
	case "author", "article:author":
		if art.Author == "" {
			art.Author = content
		}
	case "description", "og:description":
		if art.Description == "" {
			art.Description = content
		}
	}
}

// skipped elements never contribute article text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true, "footer": true,
	"header": true, "aside": true, "form": true, "svg": true, "iframe": true,
}

// blocks end a paragraph in the extracted text.
var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "li": true, "br": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "pre": true, "tr": true,
}

// readable returns the visible text below n with one blank line between blocks.
func readable(n *html.Node) string {
	var paras []string
	var cur strings.Builder
	flush := func() {
		if s := collapse(cur.String()); s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
			if blocks[n.Data] {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blocks[n.Data] {
			flush()
		}
	}
	walk(n)
	flush()
	return strings.Join(paras, "\n\n")
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
