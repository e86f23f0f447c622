package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Upload validation
	"error.upload.no_file_part":         "Kei Datei mitgschickt",
	"error.upload.no_selected_file":     "Kei Datei usgwählt",
	"error.upload.extension":            "Nume .txt-Dateie si erloubt.",
	"error.upload.too_large":            "D Datei isch z gross (maximal %d MiB).",
	"error.upload.rate_limited":         "Z viu Uploads. Wart es Minütli und probier's nomau.",
	"error.upload.playlist_unavailable": "D Playlist cha uf däm Server nid aktualisiert wärde.",
	"error.upload.save_failed":          "Ha d Datei nid chönne speichere. Probier's haut nomau.",
	"error.analysis.failed":             "Ha dä Chat nid chönne uswärte. Probier's haut nomau.",

	// Index page
	"page.title":           "ShareVault",
	"page.subtitle":        "Lad e Chat-Export ue, när sammle mir aui Links wo teilt worde si.",
	"page.file_label":      "Chat-Export (.txt)",
	"page.option.spotify":  "Spotify-Links nacheluege",
	"page.option.youtube":  "YouTube-Links nacheluege",
	"page.option.web":      "Angeri Websiite nacheluege",
	"page.option.playlist": "Teilti Lieder zur Playliste \"%s\" hinzuefüege",
	"page.submit":          "Uswärte",
}
