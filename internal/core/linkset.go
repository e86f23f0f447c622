package core

// LinkSet is an insertion-ordered collection of LinkRecords keyed by URL.
// Iteration order is the order in which URLs were first added.
type LinkSet struct {
	order []string
	index map[string]*LinkRecord
}

func NewLinkSet() *LinkSet {
	return &LinkSet{
		index: make(map[string]*LinkRecord),
	}
}

// Add inserts a record for url unless one already exists. The first
// attribution of a URL always wins. Returns true if the record was inserted.
func (s *LinkSet) Add(url, sender, timestamp string) bool {
	if _, exists := s.index[url]; exists {
		return false
	}

	s.order = append(s.order, url)
	s.index[url] = &LinkRecord{
		URL:       url,
		Sender:    sender,
		Timestamp: timestamp,
	}
	return true
}

// Get returns the record for url, if any.
func (s *LinkSet) Get(url string) (*LinkRecord, bool) {
	rec, ok := s.index[url]
	return rec, ok
}

func (s *LinkSet) Len() int {
	return len(s.order)
}

// URLs returns the URLs in insertion order.
func (s *LinkSet) URLs() []string {
	urls := make([]string, len(s.order))
	copy(urls, s.order)
	return urls
}

// Records returns copies of all records in insertion order.
func (s *LinkSet) Records() []LinkRecord {
	records := make([]LinkRecord, 0, len(s.order))
	for _, url := range s.order {
		records = append(records, *s.index[url])
	}
	return records
}

// Apply merges an enrichment into the record for url, keeping its
// attribution. Unknown URLs are ignored so enrichment can never add records.
func (s *LinkSet) Apply(url string, e Enrichment) bool {
	rec, ok := s.index[url]
	if !ok || e == nil {
		return false
	}

	switch info := e.(type) {
	case TrackInfo:
		rec.Kind = KindTrack
		rec.Name = info.Name
		rec.Artists = info.Artists
		rec.ImageURL = info.ImageURL
	case AlbumInfo:
		rec.Kind = KindAlbum
		rec.Name = info.Name
		rec.Artists = info.Artists
		rec.ImageURL = info.ImageURL
	case PlaylistInfo:
		rec.Kind = KindPlaylist
		rec.Name = info.Name
		rec.ImageURL = info.ImageURL
	case ArtistInfo:
		rec.Kind = KindArtist
		rec.Name = info.Name
		rec.ImageURL = info.ImageURL
	case VideoInfo:
		rec.Kind = KindVideo
		rec.Name = info.Title
		rec.ImageURL = info.ThumbnailURL
	case PageInfo:
		rec.Kind = KindWebsite
		rec.Name = info.Title
		rec.ImageURL = info.ImageURL
	default:
		return false
	}
	return true
}

// URLsOfKind returns the URLs whose records currently carry kind, in insertion order.
func (s *LinkSet) URLsOfKind(kind LinkKind) []string {
	var urls []string
	for _, url := range s.order {
		if s.index[url].Kind == kind {
			urls = append(urls, url)
		}
	}
	return urls
}
