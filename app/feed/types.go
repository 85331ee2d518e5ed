package feed

import (
	"fmt"
	"time"

	"github.com/novaire/signal-feed/app/roster"
)

// Failure reasons reported per account. Every upstream failure is contained at
// the fetcher or parser boundary and converted into one of these.
const (
	ReasonTransportError = "transport_error"
	ReasonTimeout        = "timeout"
	ReasonRateLimited    = "rate_limited"
	ReasonNoPayload      = "no_payload"
	ReasonDecodeError    = "decode_error"
	ReasonEmptyResult    = "empty_result"
)

func HTTPErrorReason(status int) string {
	return fmt.Sprintf("http_error_%d", status)
}

// Variant selects the upstream payload format.
type Variant int

const (
	VariantSyndication Variant = iota
	VariantRSS
)

// Post is the canonical, source-agnostic post record. JSON field names are the
// feed's wire format.
type Post struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Author      string    `json:"author"`
	Handle      string    `json:"handle"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedAtMs int64     `json:"createdAtMs"`
	Likes       int       `json:"likes"`
	Retweets    int       `json:"retweets"`
	URL         string    `json:"url"`
	Avatar      *string   `json:"avatar"`
}

// FetchError records an account whose pipeline yielded no posts.
type FetchError struct {
	Username string `json:"username"`
	Reason   string `json:"error"`
}

// Feed is the aggregated response payload, newest post first.
type Feed struct {
	OK                bool         `json:"ok"`
	Count             int          `json:"count"`
	AccountsWithPosts int          `json:"accountsWithPosts"`
	FetchedAt         time.Time    `json:"fetchedAt"`
	Errors            []FetchError `json:"errors"`
	Posts             []Post       `json:"posts"`
}

// FetchResult is the outcome of one fetch attempt. Reason is empty on success.
type FetchResult struct {
	Body       []byte
	StatusCode int
	Reason     string
}

func (r FetchResult) OK() bool {
	return r.Reason == ""
}

// AccountResult is one account's slot in the pipeline output. Err is non-nil
// exactly when Posts is empty.
type AccountResult struct {
	Account roster.Account
	Posts   []Post
	Err     *FetchError
}

// TimelineDiagnostic is the single-account probe result served by the debug
// endpoint.
type TimelineDiagnostic struct {
	Handle     string `json:"handle"`
	OK         bool   `json:"ok"`
	Status     int    `json:"status"`
	Reason     string `json:"reason,omitempty"`
	BodyLength int    `json:"htmlLength"`
	HasPayload bool   `json:"hasPayload"`
	EntryCount int    `json:"entryCount"`
	FirstPost  *Post  `json:"firstPost,omitempty"`
}
