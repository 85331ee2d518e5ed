package feed

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"

	"github.com/novaire/signal-feed/app/roster"
)

// syndicationTimeLayout is the created_at format of the embedded-JSON variant.
const syndicationTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// minRSSTitleLen rejects RSS titles that are too short to be a usable post
// after prefix stripping.
const minRSSTitleLen = 5

var (
	shortLinkPattern = regexp.MustCompile(`https?://t\.co/\S+`)
	replyPrefix      = regexp.MustCompile(`^R to @\S+:\s*`)
	retweetPrefix    = regexp.MustCompile(`^RT by @\S+:\s*`)
	statusIDPattern  = regexp.MustCompile(`/status/(\d+)`)
	nitterHost       = regexp.MustCompile(`https?://nitter\.[^/]+/`)
)

// Normalizer maps variant-specific entries to the canonical Post shape.
// A nil return means the entry carries no usable post.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// FromTweet normalizes an embedded-JSON timeline entry.
func (n *Normalizer) FromTweet(entry tweetEntry, account roster.Account) *Post {
	text := n.cleanText(cmp.Or(entry.FullText, entry.Text))
	if text == "" {
		return nil
	}

	createdAt, createdAtMs := n.parseTimestamp(entry.CreatedAt)

	handle := strings.ToLower(cmp.Or(entry.User.ScreenName, account.Handle))

	var avatar *string
	if entry.User.ProfileImageURLHTTPS != "" {
		avatarURL := entry.User.ProfileImageURLHTTPS
		avatar = &avatarURL
	}

	return &Post{
		ID:          entry.IDStr,
		Text:        text,
		Author:      cmp.Or(entry.User.Name, account.Handle),
		Handle:      handle,
		CreatedAt:   createdAt,
		CreatedAtMs: createdAtMs,
		Likes:       entry.FavoriteCount,
		Retweets:    entry.RetweetCount,
		URL:         fmt.Sprintf("https://x.com/%s/status/%s", handle, entry.IDStr),
		Avatar:      avatar,
	}
}

// FromRSSItem normalizes a fallback RSS item. Reply/retweet prefixes are
// stripped before the length check; source links are rewritten to canonical
// permalinks.
func (n *Normalizer) FromRSSItem(item *gofeed.Item, account roster.Account) *Post {
	text := item.Title
	text = replyPrefix.ReplaceAllString(text, "")
	text = retweetPrefix.ReplaceAllString(text, "")
	text = n.cleanText(text)
	if len([]rune(text)) < minRSSTitleLen {
		return nil
	}

	link := nitterHost.ReplaceAllString(strings.TrimSpace(item.Link), "https://x.com/")

	var createdAt time.Time
	var createdAtMs int64
	if item.PublishedParsed != nil {
		createdAt = item.PublishedParsed.UTC()
		createdAtMs = createdAt.UnixMilli()
	} else {
		createdAt, createdAtMs = n.parseTimestamp(item.Published)
	}

	handle := strings.ToLower(account.Handle)

	id := ""
	if match := statusIDPattern.FindStringSubmatch(link); match != nil {
		id = match[1]
	} else {
		id = fallbackID(text, createdAtMs)
	}

	postURL := link
	if postURL == "" {
		postURL = fmt.Sprintf("https://x.com/%s", handle)
	}

	return &Post{
		ID:          id,
		Text:        text,
		Author:      account.Handle,
		Handle:      handle,
		CreatedAt:   createdAt,
		CreatedAtMs: createdAtMs,
		URL:         postURL,
	}
}

// cleanText strips the source's short links, normalizes to NFC, and trims.
func (n *Normalizer) cleanText(raw string) string {
	text := shortLinkPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(norm.NFC.String(text))
}

// parseTimestamp parses the source timestamp. On failure it substitutes epoch
// zero, leaving the post to be rejected by freshness filtering downstream.
func (n *Normalizer) parseTimestamp(raw string) (time.Time, int64) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Unix(0, 0).UTC(), 0
	}

	if t, err := time.Parse(syndicationTimeLayout, raw); err == nil {
		return t.UTC(), t.UnixMilli()
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC(), t.UnixMilli()
	}

	return time.Unix(0, 0).UTC(), 0
}

// fallbackID derives a deterministic identifier when the source provides none.
func fallbackID(text string, createdAtMs int64) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", text, createdAtMs))
	return hex.EncodeToString(sum[:])[:16]
}
