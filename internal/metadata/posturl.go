package metadata

import (
	"fmt"
	"strings"
)

// PostURL derives the canonical web URL for a source record, when the
// platform is recognized. Returns "" when no URL can be built.
func PostURL(platform string, raw map[string]interface{}) string {
	switch platform {
	case "twitter":
		return twitterStatusURL(raw)
	case "weibo":
		return weiboStatusURL(raw)
	case "pixiv":
		if id := firstScalar(raw, []path{{"id"}}); id != "" {
			return "https://www.pixiv.net/artworks/" + id
		}
	case "danbooru":
		if id := firstScalar(raw, []path{{"id"}}); id != "" {
			return "https://danbooru.donmai.us/posts/" + id
		}
	case "yandere":
		if id := firstScalar(raw, []path{{"id"}}); id != "" {
			return "https://yande.re/post/show/" + id
		}
	case "bilibili":
		if id := firstScalar(raw, []path{{"detail", "id_str"}, {"id"}}); id != "" {
			return "https://www.bilibili.com/opus/" + id
		}
	case "tumblr":
		return firstString(raw, []path{{"post_url"}, {"short_url"}})
	case "mastodon":
		return firstString(raw, []path{{"uri"}, {"url"}})
	}

	return firstString(raw, []path{{"post_url"}, {"uri"}, {"source_url"}, {"url"}, {"live_url"}})
}

func twitterStatusURL(raw map[string]interface{}) string {
	tweetID := firstScalar(raw, []path{{"tweet_id"}, {"id"}})
	if tweetID == "" {
		return ""
	}

	author := firstString(raw, []path{
		{"author"},
		{"author", "name"},
		{"author", "username"},
		{"author", "screen_name"},
		{"user", "name"},
		{"user", "username"},
		{"user", "screen_name"},
	})
	if handle := strings.TrimPrefix(author, "@"); handle != "" {
		return fmt.Sprintf("https://x.com/%s/status/%s", handle, tweetID)
	}
	return "https://x.com/i/status/" + tweetID
}

func weiboStatusURL(raw map[string]interface{}) string {
	if url := firstString(raw, []path{{"status", "url"}}); url != "" {
		return url
	}

	mblogID := firstScalar(raw, []path{{"status", "mblogid"}})
	if mblogID == "" {
		return ""
	}
	if uid := firstScalar(raw, []path{{"status", "user", "idstr"}}); uid != "" {
		return fmt.Sprintf("https://weibo.com/%s/%s", uid, mblogID)
	}
	return "https://weibo.com/n/" + mblogID
}
