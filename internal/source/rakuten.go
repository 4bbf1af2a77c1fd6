package source

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sakif/news-curator/internal/model"
)

// RakutenBaseURL is the Rakuten Recipe API root.
const RakutenBaseURL = "https://app.rakuten.co.jp/services/api/Recipe"

// ErrNoAppID is returned when the adapter was built without an application ID.
var ErrNoAppID = errors.New("rakuten application id is not configured")

// Rakuten queries the recipe ranking API. Recipes are live items: they are
// never stored, so the ranking is fetched on every request.
type Rakuten struct {
	client  *Client
	baseURL string
	appID   string
}

var _ Adapter = (*Rakuten)(nil)

// NewRakuten creates the adapter. baseURL "" means RakutenBaseURL.
func NewRakuten(client *Client, baseURL, appID string) *Rakuten {
	if baseURL == "" {
		baseURL = RakutenBaseURL
	}
	return &Rakuten{client: client, baseURL: strings.TrimRight(baseURL, "/"), appID: appID}
}

func (r *Rakuten) Name() string { return "rakuten" }

type rakutenRanking struct {
	Result []struct {
		RecipeTitle       string `json:"recipeTitle"`
		RecipeURL         string `json:"recipeUrl"`
		RecipePublishday  string `json:"recipePublishday"`
		RecipeDescription string `json:"recipeDescription"`
		FoodImageURL      string `json:"foodImageUrl"`
	} `json:"result"`
}

// Fetch returns the ranking for the category ID in selector ("27-266").
func (r *Rakuten) Fetch(ctx context.Context, selector string) ([]RawItem, error) {
	if r.appID == "" {
		return nil, fail(r.Name(), "fetch", ErrNoAppID)
	}

	q := url.Values{}
	q.Set("applicationId", r.appID)
	q.Set("format", "json")
	if selector != "" {
		q.Set("categoryId", selector)
	}

	body, err := r.client.Get(ctx, r.baseURL+"/CategoryRanking/20170426?"+q.Encode())
	if err != nil {
		return nil, fail(r.Name(), "fetch", err)
	}

	var ranking rakutenRanking
	if err := json.Unmarshal(body, &ranking); err != nil {
		return nil, fail(r.Name(), "decode", err)
	}

	items := make([]RawItem, 0, len(ranking.Result))
	for _, rec := range ranking.Result {
		if rec.RecipeURL == "" {
			continue
		}
		items = append(items, RawItem{
			Title:        rec.RecipeTitle,
			URL:          rec.RecipeURL,
			Published:    rec.RecipePublishday,
			Summary:      rec.RecipeDescription,
			ThumbnailURL: rec.FoodImageURL,
		})
	}
	return items, nil
}

// looseString decodes a JSON string or number into a string.
// The category list mixes the two for IDs.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	*s = looseString(b)
	return nil
}

type rakutenCategoryList struct {
	Result struct {
		Medium []struct {
			CategoryID       looseString `json:"categoryId"`
			CategoryName     string      `json:"categoryName"`
			CategoryURL      string      `json:"categoryUrl"`
			ParentCategoryID looseString `json:"parentCategoryId"`
		} `json:"medium"`
	} `json:"result"`
}

// Categories lists the medium recipe categories under parentID.
func (r *Rakuten) Categories(ctx context.Context, parentID string) ([]model.RecipeCategory, error) {
	if r.appID == "" {
		return nil, fail(r.Name(), "categories", ErrNoAppID)
	}

	q := url.Values{}
	q.Set("applicationId", r.appID)
	q.Set("format", "json")
	q.Set("categoryType", "medium")

	body, err := r.client.Get(ctx, r.baseURL+"/CategoryList/20170426?"+q.Encode())
	if err != nil {
		return nil, fail(r.Name(), "categories", err)
	}

	var list rakutenCategoryList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fail(r.Name(), "decode", err)
	}

	out := make([]model.RecipeCategory, 0)
	for _, c := range list.Result.Medium {
		if string(c.ParentCategoryID) != parentID {
			continue
		}
		out = append(out, model.RecipeCategory{
			// The ranking API takes "parent-child" IDs for medium categories.
			ID:   parentID + "-" + string(c.CategoryID),
			Name: c.CategoryName,
			URL:  c.CategoryURL,
		})
	}
	return out, nil
}
