package metadata

// path addresses a value inside a source record; each element descends one
// level into a nested object.
type path []string

// canonical field names used as keys in the mapping tables.
const (
	fieldPostID      = "post_id"
	fieldAuthor      = "author_name"
	fieldPostedAt    = "posted_at"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldSensitive   = "sensitive"
	fieldScore       = "score"
	fieldMediaURL    = "media_url"
	fieldWidth       = "width"
	fieldHeight      = "height"
	fieldContentHash = "content_hash"
)

// defaultMapping maps each canonical field to candidate source paths, tried
// in priority order; the first present wins. These cover the common shapes
// produced by download tools across platforms.
var defaultMapping = map[string][]path{
	fieldPostID: {
		{"id"},
		{"post_id"},
		{"media_id"},
	},
	fieldAuthor: {
		{"author"},
		{"username"},
		{"blog_name"},
		{"uploader"},
		{"user", "name"},
		{"user", "username"},
		{"user", "screen_name"},
		{"user", "id"},
		{"account", "display_name"},
		{"account", "username"},
		{"account", "acct"},
		{"blog", "name"},
		{"blog", "title"},
	},
	fieldPostedAt: {
		{"date"},
		{"created_at"},
		{"create_date"},
		{"published_at"},
		{"timestamp"},
	},
	fieldTitle: {
		{"title"},
		{"subject"},
		{"summary"},
	},
	fieldDescription: {
		{"description"},
		{"content"},
		{"caption"},
		{"body"},
		{"text"},
		{"spoiler_text"},
	},
	fieldSensitive: {
		{"sensitive"},
		{"nsfw"},
		{"is_sensitive"},
		{"is_nsfw"},
		{"rating"},
	},
	fieldScore: {
		{"score"},
		{"points"},
		{"favorite_count"},
		{"fav_count"},
		{"like_count"},
	},
	fieldMediaURL: {
		{"file_url"},
		{"media_url"},
		{"url"},
	},
	fieldWidth: {
		{"width"},
		{"image_width"},
	},
	fieldHeight: {
		{"height"},
		{"image_height"},
	},
	fieldContentHash: {
		{"md5"},
		{"file_md5"},
		{"filemd5"},
	},
}

// platformMappings holds per-platform candidate paths that take priority over
// the defaults. Adding support for a new platform means adding rows here,
// not new code paths.
var platformMappings = map[string]map[string][]path{
	"twitter": {
		fieldPostID: {
			{"tweet_id"},
		},
		fieldAuthor: {
			{"author", "name"},
			{"author", "username"},
			{"author", "screen_name"},
		},
		fieldDescription: {
			{"content"},
			{"full_text"},
		},
	},
	"weibo": {
		fieldPostID: {
			{"status", "mblogid"},
			{"status", "id"},
		},
		fieldAuthor: {
			{"status", "user", "name"},
			{"status", "user", "username"},
			{"status", "user", "screen_name"},
			{"status", "user", "idstr"},
			{"status", "user", "id"},
		},
		fieldPostedAt: {
			{"status", "date"},
			{"status", "created_at"},
		},
		fieldDescription: {
			{"status", "text_raw"},
			{"status", "text"},
			{"status", "longTextContent_raw"},
			{"status", "longTextContent"},
		},
	},
	"bilibili": {
		fieldPostID: {
			{"detail", "id_str"},
		},
		fieldAuthor: {
			{"detail", "modules", "module_author", "name"},
			{"username"},
		},
		fieldPostedAt: {
			{"detail", "modules", "module_author", "pub_ts"},
		},
	},
	"danbooru": {
		fieldAuthor: {
			{"tag_string_artist"},
		},
		fieldScore: {
			{"score"},
			{"up_score"},
		},
	},
	"pixiv": {
		fieldAuthor: {
			{"user", "name"},
			{"user", "account"},
		},
		fieldScore: {
			{"total_bookmarks"},
		},
		fieldSensitive: {
			{"x_restrict"},
		},
	},
	"tumblr": {
		fieldPostedAt: {
			{"timestamp"},
			{"date"},
		},
		fieldDescription: {
			{"summary"},
			{"caption"},
		},
	},
	"mastodon": {
		fieldDescription: {
			{"content"},
			{"spoiler_text"},
		},
	},
}

// tagPaths lists every source field that may carry tags. Platforms that split
// tags across category fields (danbooru-style tag_string_*) get all of them
// unioned into one flat set; the per-category fields remain readable from
// RawExtra.
var tagPaths = []path{
	{"tags"},
	{"hashtags"},
	{"tag_string"},
	{"tag_string_general"},
	{"tag_string_character"},
	{"tag_string_artist"},
	{"tag_string_copyright"},
	{"tag_string_meta"},
	{"tags_general"},
	{"tags_character"},
	{"tags_artist"},
	{"tags_copyright"},
	{"keywords"},
}

// platformPaths locates the platform tag inside a source record when the
// caller has not determined it some other way.
var platformPaths = []path{
	{"category"},
	{"site"},
	{"service"},
	{"subcategory_site"},
}

// candidatePaths returns the lookup order for one canonical field on one
// platform: platform-specific rows first, then the defaults.
func candidatePaths(platform, field string) []path {
	var out []path
	if overrides, ok := platformMappings[platform]; ok {
		out = append(out, overrides[field]...)
	}
	return append(out, defaultMapping[field]...)
}
