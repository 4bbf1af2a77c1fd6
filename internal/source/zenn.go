package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
)

// ZennBaseURL is the public site root.
const ZennBaseURL = "https://zenn.dev"

// Zenn scrapes the article listing. The page is a Next.js app and the
// listing data ships inside the page as JSON in script#__NEXT_DATA__, which
// is far more stable than the rendered markup.
type Zenn struct {
	client  *Client
	baseURL string
}

var _ Adapter = (*Zenn)(nil)

// NewZenn creates the adapter. baseURL "" means ZennBaseURL.
func NewZenn(client *Client, baseURL string) *Zenn {
	if baseURL == "" {
		baseURL = ZennBaseURL
	}
	return &Zenn{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (z *Zenn) Name() string { return "zenn" }

type zennNextData struct {
	Props struct {
		PageProps struct {
			Articles []struct {
				Title       string `json:"title"`
				Path        string `json:"path"`
				PublishedAt string `json:"publishedAt"`
				User        struct {
					AvatarSmallURL string `json:"avatarSmallUrl"`
				} `json:"user"`
			} `json:"articles"`
		} `json:"pageProps"`
	} `json:"props"`
}

// Fetch reads the listing at selector (default "/articles").
func (z *Zenn) Fetch(ctx context.Context, selector string) ([]RawItem, error) {
	if selector == "" {
		selector = "/articles"
	}

	body, err := z.client.Get(ctx, z.baseURL+selector)
	if err != nil {
		return nil, fail(z.Name(), "fetch", err)
	}

	raw, err := embeddedJSON(body, "script#__NEXT_DATA__")
	if err != nil {
		return nil, fail(z.Name(), "parse", err)
	}

	var data zennNextData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fail(z.Name(), "decode", err)
	}

	articles := data.Props.PageProps.Articles
	items := make([]RawItem, 0, len(articles))
	for _, a := range articles {
		if a.Path == "" {
			continue
		}
		items = append(items, RawItem{
			Title:        a.Title,
			URL:          z.baseURL + a.Path,
			Published:    a.PublishedAt,
			ThumbnailURL: a.User.AvatarSmallURL,
		})
	}
	return items, nil
}

// embeddedJSON returns the text of the first element matching selector.
func embeddedJSON(page []byte, selector string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%s not found", selector)
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return nil, errors.New(selector + " is empty")
	}
	return []byte(text), nil
}
