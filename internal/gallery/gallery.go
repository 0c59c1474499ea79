// Package gallery implements the album and photo management glue around
// the embedding catalog: albums and photos live as objects in blob
// storage, one embedding collection per album.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-gallery/internal/blob"
	"github.com/kozaktomas/face-gallery/internal/catalog"
)

const (
	albumsRoot      = "albums/"
	placeholderName = ".placeholder"
	thumbsPrefix    = "thumbs/"
)

// ErrInvalidAlbumName is returned when an album name slugs to nothing.
var ErrInvalidAlbumName = errors.New("album name produces an empty identifier")

// Album describes one album for listings.
type Album struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Cover      string `json:"cover,omitempty"`
	PhotoCount int    `json:"photo_count"`
}

// Photo describes one stored photo.
type Photo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Gallery manages album and photo objects. The album slug doubles as the
// collection name of the album's embedding catalog, so deleting a photo
// can drop its catalog record too.
type Gallery struct {
	blobs    blob.Store
	catalogs *catalog.Store
	baseURL  string
}

// New creates a gallery. baseURL is the public base URL photos are served
// under (no trailing slash).
func New(blobs blob.Store, catalogs *catalog.Store, baseURL string) *Gallery {
	return &Gallery{
		blobs:    blobs,
		catalogs: catalogs,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// AllowedFile reports whether the filename has a supported image extension.
func AllowedFile(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	switch strings.ToLower(filename[i+1:]) {
	case "png", "jpg", "jpeg", "gif", "webp":
		return true
	}
	return false
}

func albumPrefix(album string) string {
	return albumsRoot + album + "/"
}

// PhotoURL returns the public URL a stored object is served under.
func (g *Gallery) PhotoURL(key string) string {
	return g.baseURL + "/photos/" + key
}

// CreateAlbum creates an album from a display name. Albums are plain key
// prefixes in blob storage; a placeholder object materializes the prefix.
func (g *Gallery) CreateAlbum(ctx context.Context, name string) (Album, error) {
	id := Slug(name)
	if id == "" {
		return Album{}, ErrInvalidAlbumName
	}
	if err := g.blobs.Put(ctx, albumPrefix(id)+placeholderName, nil); err != nil {
		return Album{}, fmt.Errorf("creating album %q: %w", id, err)
	}
	return Album{ID: id, Name: name}, nil
}

// ListAlbums lists all albums with photo counts and cover URLs.
func (g *Gallery) ListAlbums(ctx context.Context) ([]Album, error) {
	keys, err := g.blobs.List(ctx, albumsRoot)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}

	albums := []Album{}
	index := map[string]int{}
	for _, key := range keys {
		rest := strings.TrimPrefix(key, albumsRoot)
		id, file, ok := strings.Cut(rest, "/")
		if !ok || id == "" {
			continue
		}

		pos, seen := index[id]
		if !seen {
			pos = len(albums)
			index[id] = pos
			albums = append(albums, Album{ID: id, Name: displayName(id)})
		}
		if file == placeholderName || strings.HasPrefix(file, thumbsPrefix) {
			continue
		}

		albums[pos].PhotoCount++
		if albums[pos].Cover == "" {
			albums[pos].Cover = g.coverURL(ctx, id, file)
		}
	}
	return albums, nil
}

// coverURL prefers a photo's thumbnail, falling back to the full object.
func (g *Gallery) coverURL(ctx context.Context, album, file string) string {
	thumbKey := albumPrefix(album) + thumbsPrefix + file + ".jpg"
	if _, err := g.blobs.Get(ctx, thumbKey); err == nil {
		return g.PhotoURL(thumbKey)
	}
	return g.PhotoURL(albumPrefix(album) + file)
}

// displayName turns an album slug back into a readable name.
func displayName(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ListPhotos lists an album's photos in key order.
func (g *Gallery) ListPhotos(ctx context.Context, album string) ([]Photo, error) {
	prefix := albumPrefix(album)
	keys, err := g.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing photos in %q: %w", album, err)
	}

	photos := []Photo{}
	for _, key := range keys {
		file := strings.TrimPrefix(key, prefix)
		if file == placeholderName || strings.HasPrefix(file, thumbsPrefix) {
			continue
		}
		photos = append(photos, Photo{
			ID:   file,
			Name: originalName(file),
			URL:  g.PhotoURL(key),
		})
	}
	return photos, nil
}

// originalName strips the uuid prefix added at upload time.
func originalName(id string) string {
	if _, name, ok := strings.Cut(id, "_"); ok && name != "" {
		return name
	}
	return id
}

// Upload stores a photo under a collision-free key and writes a cover
// thumbnail next to it. Thumbnail generation is best effort; a photo that
// does not decode is still stored.
func (g *Gallery) Upload(ctx context.Context, album, filename string, data []byte) (Photo, error) {
	name := sanitizeFilename(filename)
	if name == "" || !AllowedFile(name) {
		return Photo{}, fmt.Errorf("file type not allowed: %q", filename)
	}

	id := uuid.New().String() + "_" + name
	key := albumPrefix(album) + id
	if err := g.blobs.Put(ctx, key, data); err != nil {
		return Photo{}, fmt.Errorf("storing photo %q: %w", name, err)
	}

	if thumb, err := Thumbnail(data, thumbnailEdge); err == nil {
		thumbKey := albumPrefix(album) + thumbsPrefix + id + ".jpg"
		_ = g.blobs.Put(ctx, thumbKey, thumb)
	}

	return Photo{ID: id, Name: name, URL: g.PhotoURL(key)}, nil
}

// DeleteResult reports the outcome of a batch photo deletion.
type DeleteResult struct {
	Deleted int                 `json:"deleted_count"`
	Errors  []map[string]string `json:"errors,omitempty"`
}

// DeletePhotos removes photos and their catalog records. Each photo is
// handled independently; failures are collected per item.
func (g *Gallery) DeletePhotos(ctx context.Context, album string, photoIDs []string) DeleteResult {
	result := DeleteResult{}
	for _, id := range photoIDs {
		clean := sanitizeFilename(id)
		if clean == "" || clean != id {
			result.Errors = append(result.Errors, map[string]string{
				"photo_id": id, "error": "invalid photo id",
			})
			continue
		}

		key := albumPrefix(album) + id
		if err := g.blobs.Delete(ctx, key); err != nil {
			result.Errors = append(result.Errors, map[string]string{
				"photo_id": id, "error": err.Error(),
			})
			continue
		}
		_ = g.blobs.Delete(ctx, albumPrefix(album)+thumbsPrefix+id+".jpg")

		// Drop the photo's face embedding so it stops matching queries.
		if _, err := g.catalogs.Remove(ctx, album, g.PhotoURL(key)); err != nil {
			result.Errors = append(result.Errors, map[string]string{
				"photo_id": id, "error": fmt.Sprintf("photo deleted but embedding removal failed: %v", err),
			})
			continue
		}
		result.Deleted++
	}
	return result
}

// Open streams a stored object for the photo-serving route.
func (g *Gallery) Open(ctx context.Context, key string) ([]byte, error) {
	return g.blobs.Get(ctx, key)
}
