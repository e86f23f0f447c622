package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Upload validation
	"error.upload.no_file_part":         "No file part",
	"error.upload.no_selected_file":     "No selected file",
	"error.upload.extension":            "Only .txt files are allowed.",
	"error.upload.too_large":            "The file is too large (limit: %d MiB).",
	"error.upload.rate_limited":         "Too many uploads. Please wait a minute and try again.",
	"error.upload.playlist_unavailable": "Playlist updates are not available on this server.",
	"error.upload.save_failed":          "Could not store the uploaded file. Please try again.",
	"error.analysis.failed":             "Could not analyse the chat export. Please try again.",

	// Index page
	"page.title":           "ShareVault",
	"page.subtitle":        "Upload a chat export to collect every link that was shared.",
	"page.file_label":      "Chat export (.txt)",
	"page.option.spotify":  "Look up Spotify links",
	"page.option.youtube":  "Look up YouTube links",
	"page.option.web":      "Look up other web pages",
	"page.option.playlist": "Add shared tracks to the playlist \"%s\"",
	"page.submit":          "Analyse",
}
