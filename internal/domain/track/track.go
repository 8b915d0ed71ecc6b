// Package track provides the catalog Track entity.
package track

import (
	"fmt"
	"strings"
	"time"
)

// Track represents a catalog track found for a song request.
// Contains only information retrieved from the catalog API.
type Track struct {
	ID          string        // Catalog track ID
	Name        string        // Track name
	Artists     []string      // Artist names
	Album       string        // Album name
	AlbumArtURL string        // Album art URL
	Duration    time.Duration // Track duration
	URL         string        // Web player URL
	Popularity  int           // Popularity score (0-100)
	Explicit    bool          // Explicit content flag
}

// ArtistNames joins the artist names for display.
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}

// Label returns "artists - name (m:ss)".
func (t Track) Label() string {
	d := t.Duration.Round(time.Second)
	return fmt.Sprintf("%s - %s (%d:%02d)", t.ArtistNames(), t.Name, int(d.Minutes()), int(d.Seconds())%60)
}
