package tmdb

const (
	imageBaseURL = "https://image.tmdb.org/t/p/"
	youtubeEmbed = "https://www.youtube.com/embed/"
	youtubeWatch = "https://www.youtube.com/watch?v="

	SizePoster   = "w500"
	SizeThumb    = "w200"
	SizeOriginal = "original"
)

// PlaceholderImage is shown wherever a poster or profile path is absent.
const PlaceholderImage = "data:image/svg+xml;utf8," +
	"%3Csvg xmlns='http://www.w3.org/2000/svg' width='200' height='300' viewBox='0 0 200 300'%3E" +
	"%3Crect width='200' height='300' fill='%23333'/%3E" +
	"%3Ctext x='100' y='155' font-size='18' fill='%23999' text-anchor='middle'%3ENo image%3C/text%3E" +
	"%3C/svg%3E"

// ImageURL returns the full CDN URL for an image path, or "" when the path
// is absent.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

// ImageOrPlaceholder is ImageURL with PlaceholderImage substituted for
// absent paths.
func ImageOrPlaceholder(path, size string) string {
	if u := ImageURL(path, size); u != "" {
		return u
	}
	return PlaceholderImage
}

// YouTubeEmbedURL returns the iframe URL for a YouTube video key.
func YouTubeEmbedURL(key string) string {
	if key == "" {
		return ""
	}
	return youtubeEmbed + key
}

// YouTubeWatchURL returns the watch page URL for a YouTube video key.
func YouTubeWatchURL(key string) string {
	if key == "" {
		return ""
	}
	return youtubeWatch + key
}
