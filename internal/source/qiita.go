package source

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
)

// QiitaBaseURL is the public site root.
const QiitaBaseURL = "https://qiita.com"

// Qiita scrapes the trend list from the home page. The data sits in the
// props blob of the HomeTrendPage component.
type Qiita struct {
	client  *Client
	baseURL string
}

var _ Adapter = (*Qiita)(nil)

// NewQiita creates the adapter. baseURL "" means QiitaBaseURL.
func NewQiita(client *Client, baseURL string) *Qiita {
	if baseURL == "" {
		baseURL = QiitaBaseURL
	}
	return &Qiita{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (q *Qiita) Name() string { return "qiita" }

type qiitaTrendPage struct {
	Trend struct {
		Edges []struct {
			Node struct {
				Title     string `json:"title"`
				LinkURL   string `json:"linkUrl"`
				CreatedAt string `json:"createdAt"`
				Author    struct {
					ProfileImageURL string `json:"profileImageUrl"`
				} `json:"author"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"trend"`
}

// Fetch reads the page at selector (default "/").
func (q *Qiita) Fetch(ctx context.Context, selector string) ([]RawItem, error) {
	if selector == "" {
		selector = "/"
	}

	body, err := q.client.Get(ctx, q.baseURL+selector)
	if err != nil {
		return nil, fail(q.Name(), "fetch", err)
	}

	raw, err := embeddedJSON(body, `script[data-component-name="HomeTrendPage"]`)
	if err != nil {
		return nil, fail(q.Name(), "parse", err)
	}

	var page qiitaTrendPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fail(q.Name(), "decode", err)
	}

	items := make([]RawItem, 0, len(page.Trend.Edges))
	for _, e := range page.Trend.Edges {
		n := e.Node
		if n.LinkURL == "" {
			continue
		}
		items = append(items, RawItem{
			Title:        n.Title,
			URL:          n.LinkURL,
			Published:    n.CreatedAt,
			ThumbnailURL: n.Author.ProfileImageURL,
		})
	}
	return items, nil
}
