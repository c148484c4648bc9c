package model

// TrackID uniquely identifies a track within a library
type TrackID string

// Track is one playable song with its accepted answers.
// Immutable once loaded from the library.
type Track struct {
	ID TrackID `json:"id"`

	// Canonical display values, revealed after a round closes
	Title  string `json:"title"`
	Artist string `json:"artist"`

	// Additional accepted spellings (the canonical values are always accepted)
	TitleAliases  []string `json:"title_aliases,omitempty"`
	ArtistAliases []string `json:"artist_aliases,omitempty"`

	// AudioRef is an opaque handle passed to the audio collaborator
	AudioRef string `json:"audio_ref"`
}

// AcceptedTitles returns the canonical title plus all aliases
func (t *Track) AcceptedTitles() []string {
	return append([]string{t.Title}, t.TitleAliases...)
}

// AcceptedArtists returns the canonical artist plus all aliases
func (t *Track) AcceptedArtists() []string {
	return append([]string{t.Artist}, t.ArtistAliases...)
}
