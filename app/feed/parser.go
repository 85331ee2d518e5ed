package feed

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// payloadMarker identifies the script block embedding the timeline JSON.
const payloadMarker = "__NEXT_DATA__"

// Syndication wire structs. Every level is optional: individual malformed
// entries are skipped, never fatal.
type tweetUser struct {
	Name                 string `json:"name"`
	ScreenName           string `json:"screen_name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

type tweetEntry struct {
	IDStr         string    `json:"id_str"`
	FullText      string    `json:"full_text"`
	Text          string    `json:"text"`
	CreatedAt     string    `json:"created_at"`
	FavoriteCount int       `json:"favorite_count"`
	RetweetCount  int       `json:"retweet_count"`
	User          tweetUser `json:"user"`
}

type timelineEntry struct {
	Type    string `json:"type"`
	Content struct {
		Tweet *tweetEntry `json:"tweet"`
	} `json:"content"`
}

type nextData struct {
	Props struct {
		PageProps struct {
			Timeline struct {
				Entries []timelineEntry `json:"entries"`
			} `json:"timeline"`
		} `json:"pageProps"`
	} `json:"props"`
}

// Parser extracts timeline entries from an upstream payload. It never fails
// past its boundary: malformed input yields an empty sequence plus a reason.
type Parser struct {
	gofeedParser *gofeed.Parser
	maxEntries   int
}

func NewParser(maxEntries int) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		maxEntries:   maxEntries,
	}
}

// ParseSyndication locates the embedded JSON payload in the HTML document and
// decodes its timeline entries. The returned reason is empty on success.
func (p *Parser) ParseSyndication(body []byte) ([]tweetEntry, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, ReasonDecodeError
	}

	script := doc.Find("script#" + payloadMarker)
	if script.Length() == 0 {
		return nil, ReasonNoPayload
	}

	payload := strings.TrimSpace(script.First().Text())
	if payload == "" {
		return nil, ReasonNoPayload
	}

	var data nextData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, ReasonDecodeError
	}

	entries := data.Props.PageProps.Timeline.Entries
	if len(entries) > p.maxEntries {
		entries = entries[:p.maxEntries]
	}

	tweets := make([]tweetEntry, 0, len(entries))
	for _, entry := range entries {
		// Minimal shape check: must be a post entry and carry an identifier.
		if entry.Type != "tweet" || entry.Content.Tweet == nil || entry.Content.Tweet.IDStr == "" {
			continue
		}
		tweets = append(tweets, *entry.Content.Tweet)
	}

	return tweets, ""
}

// ParseRSS parses the fallback RSS/XML document. Items without a usable title
// are skipped by the normalizer; here only document-level failures matter.
func (p *Parser) ParseRSS(body []byte) ([]*gofeed.Item, string) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, ReasonDecodeError
	}

	items := parsed.Items
	if len(items) > p.maxEntries {
		items = items[:p.maxEntries]
	}

	return items, ""
}
