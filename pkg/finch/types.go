package finch

// Status represents a single post on the platform.
type Status struct {
	ID                  int64     `json:"id"                               yaml:"id"`
	IDStr               string    `json:"id_str"                           yaml:"id_str"`
	CreatedAt           string    `json:"created_at"                       yaml:"created_at"`
	Text                string    `json:"text"                             yaml:"text"`
	Source              string    `json:"source,omitempty"                 yaml:"source,omitempty"`
	Truncated           bool      `json:"truncated"                        yaml:"truncated"`
	InReplyToStatusID   int64     `json:"in_reply_to_status_id,omitempty"  yaml:"in_reply_to_status_id,omitempty"`
	InReplyToScreenName string    `json:"in_reply_to_screen_name,omitempty" yaml:"in_reply_to_screen_name,omitempty"`
	User                *User     `json:"user,omitempty"                   yaml:"user,omitempty"`
	RetweetedStatus     *Status   `json:"retweeted_status,omitempty"       yaml:"retweeted_status,omitempty"`
	RetweetCount        int       `json:"retweet_count"                    yaml:"retweet_count"`
	FavoriteCount       int       `json:"favorite_count"                   yaml:"favorite_count"`
	Retweeted           bool      `json:"retweeted"                        yaml:"retweeted"`
	Favorited           bool      `json:"favorited"                        yaml:"favorited"`
	Entities            *Entities `json:"entities,omitempty"               yaml:"entities,omitempty"`
	Lang                string    `json:"lang,omitempty"                   yaml:"lang,omitempty"`
}

// User represents an account.
type User struct {
	ID              int64  `json:"id"                          yaml:"id"`
	IDStr           string `json:"id_str"                      yaml:"id_str"`
	ScreenName      string `json:"screen_name"                 yaml:"screen_name"`
	Name            string `json:"name"                        yaml:"name"`
	Description     string `json:"description,omitempty"       yaml:"description,omitempty"`
	Location        string `json:"location,omitempty"          yaml:"location,omitempty"`
	URL             string `json:"url,omitempty"               yaml:"url,omitempty"`
	Protected       bool   `json:"protected"                   yaml:"protected"`
	Verified        bool   `json:"verified"                    yaml:"verified"`
	FollowersCount  int    `json:"followers_count"             yaml:"followers_count"`
	FriendsCount    int    `json:"friends_count"               yaml:"friends_count"`
	StatusesCount   int    `json:"statuses_count"              yaml:"statuses_count"`
	ProfileImageURL string `json:"profile_image_url_https,omitempty" yaml:"profile_image_url_https,omitempty"`
	CreatedAt       string `json:"created_at"                  yaml:"created_at"`
}

// Entities groups the structured pieces extracted from status text.
type Entities struct {
	Hashtags     []HashtagEntity `json:"hashtags,omitempty"      yaml:"hashtags,omitempty"`
	URLs         []URLEntity     `json:"urls,omitempty"          yaml:"urls,omitempty"`
	UserMentions []MentionEntity `json:"user_mentions,omitempty" yaml:"user_mentions,omitempty"`
	Media        []MediaEntity   `json:"media,omitempty"         yaml:"media,omitempty"`
}

// HashtagEntity is a hashtag occurrence inside status text.
type HashtagEntity struct {
	Text    string `json:"text"    yaml:"text"`
	Indices []int  `json:"indices" yaml:"indices"`
}

// URLEntity is a link occurrence inside status text.
type URLEntity struct {
	URL         string `json:"url"          yaml:"url"`
	ExpandedURL string `json:"expanded_url" yaml:"expanded_url"`
	DisplayURL  string `json:"display_url"  yaml:"display_url"`
	Indices     []int  `json:"indices"      yaml:"indices"`
}

// MentionEntity is a user mention inside status text.
type MentionEntity struct {
	ID         int64  `json:"id"          yaml:"id"`
	IDStr      string `json:"id_str"      yaml:"id_str"`
	ScreenName string `json:"screen_name" yaml:"screen_name"`
	Name       string `json:"name"        yaml:"name"`
	Indices    []int  `json:"indices"     yaml:"indices"`
}

// MediaEntity is an attached media item.
type MediaEntity struct {
	ID       int64  `json:"id"        yaml:"id"`
	IDStr    string `json:"id_str"    yaml:"id_str"`
	MediaURL string `json:"media_url_https" yaml:"media_url_https"`
	Type     string `json:"type"      yaml:"type"`
	Indices  []int  `json:"indices"   yaml:"indices"`
}

// SearchResult is the response of the search/tweets operation.
type SearchResult struct {
	Statuses       []Status       `json:"statuses"        yaml:"statuses"`
	SearchMetadata SearchMetadata `json:"search_metadata" yaml:"search_metadata"`
}

// SearchMetadata carries paging hints for search results.
type SearchMetadata struct {
	Count       int    `json:"count"                  yaml:"count"`
	MaxID       int64  `json:"max_id"                 yaml:"max_id"`
	SinceID     int64  `json:"since_id"               yaml:"since_id"`
	Query       string `json:"query"                  yaml:"query"`
	NextResults string `json:"next_results,omitempty" yaml:"next_results,omitempty"`
}

// MediaUploadResult is the response of media/upload (simple or chunked).
type MediaUploadResult struct {
	MediaID          int64           `json:"media_id"                    yaml:"media_id"`
	MediaIDString    string          `json:"media_id_string"             yaml:"media_id_string"`
	Size             int64           `json:"size,omitempty"              yaml:"size,omitempty"`
	ExpiresAfterSecs int             `json:"expires_after_secs,omitempty" yaml:"expires_after_secs,omitempty"`
	Image            *MediaImage     `json:"image,omitempty"             yaml:"image,omitempty"`
	ProcessingInfo   *ProcessingInfo `json:"processing_info,omitempty"   yaml:"processing_info,omitempty"`
}

// MediaImage describes an uploaded image.
type MediaImage struct {
	ImageType string `json:"image_type" yaml:"image_type"`
	Width     int    `json:"w"          yaml:"w"`
	Height    int    `json:"h"          yaml:"h"`
}

// ProcessingInfo reports server-side processing of an uploaded media item.
type ProcessingInfo struct {
	State           string `json:"state"                       yaml:"state"`
	CheckAfterSecs  int    `json:"check_after_secs,omitempty"  yaml:"check_after_secs,omitempty"`
	ProgressPercent int    `json:"progress_percent,omitempty"  yaml:"progress_percent,omitempty"`
}

// RateLimitStatus is the response of application/rate_limit_status.
type RateLimitStatus struct {
	RateLimitContext RateLimitContext                     `json:"rate_limit_context" yaml:"rate_limit_context"`
	Resources        map[string]map[string]RateLimitEntry `json:"resources"          yaml:"resources"`
}

// RateLimitContext identifies the credential the limits apply to.
type RateLimitContext struct {
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	Application string `json:"application,omitempty"  yaml:"application,omitempty"`
}

// RateLimitEntry is the window state of one rate-limited resource.
type RateLimitEntry struct {
	Limit     int   `json:"limit"     yaml:"limit"`
	Remaining int   `json:"remaining" yaml:"remaining"`
	Reset     int64 `json:"reset"     yaml:"reset"`
}
