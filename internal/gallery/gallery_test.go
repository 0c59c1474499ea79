package gallery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/kozaktomas/face-gallery/internal/blob/mock"
	"github.com/kozaktomas/face-gallery/internal/catalog"
)

func newGallery(t *testing.T) (*Gallery, *mock.MockStore, *catalog.Store) {
	t.Helper()
	blobs := mock.NewMockStore()
	catalogs := catalog.NewStore(blobs)
	return New(blobs, catalogs, "http://localhost:8080"), blobs, catalogs
}

// testJPEG encodes a small solid-color JPEG.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 128, B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestCreateAlbum(t *testing.T) {
	g, blobs, _ := newGallery(t)

	album, err := g.CreateAlbum(context.Background(), "Léto 2024")
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if album.ID != "leto-2024" {
		t.Errorf("album ID = %q; want leto-2024", album.ID)
	}
	if !blobs.Has("albums/leto-2024/.placeholder") {
		t.Error("placeholder object missing after CreateAlbum")
	}

	if _, err := g.CreateAlbum(context.Background(), "###"); err == nil {
		t.Error("CreateAlbum with unusable name succeeded; want error")
	}
}

func TestUploadAndListPhotos(t *testing.T) {
	g, blobs, _ := newGallery(t)
	ctx := context.Background()

	photo, err := g.Upload(ctx, "trip", "My Photo.jpg", testJPEG(t, 640, 480))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasSuffix(photo.ID, "_My_Photo.jpg") {
		t.Errorf("photo ID %q missing uuid prefix or sanitized name", photo.ID)
	}
	if photo.URL != "http://localhost:8080/photos/albums/trip/"+photo.ID {
		t.Errorf("photo URL = %q", photo.URL)
	}

	// Thumbnail is stored next to the photo.
	if !blobs.Has("albums/trip/thumbs/" + photo.ID + ".jpg") {
		t.Error("thumbnail missing after upload")
	}

	photos, err := g.ListPhotos(ctx, "trip")
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("ListPhotos returned %d photos; want 1", len(photos))
	}
	if photos[0].Name != "My_Photo.jpg" {
		t.Errorf("photo name = %q; want My_Photo.jpg", photos[0].Name)
	}
}

func TestUploadRejectsBadFiles(t *testing.T) {
	g, _, _ := newGallery(t)

	if _, err := g.Upload(context.Background(), "trip", "malware.exe", []byte("x")); err == nil {
		t.Error("Upload of disallowed extension succeeded; want error")
	}
	if _, err := g.Upload(context.Background(), "trip", "", []byte("x")); err == nil {
		t.Error("Upload without filename succeeded; want error")
	}
}

func TestUploadKeepsUndecodablePhoto(t *testing.T) {
	g, blobs, _ := newGallery(t)

	photo, err := g.Upload(context.Background(), "trip", "broken.jpg", []byte("not a jpeg"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !blobs.Has("albums/trip/" + photo.ID) {
		t.Error("photo object missing")
	}
	if blobs.Has("albums/trip/thumbs/" + photo.ID + ".jpg") {
		t.Error("thumbnail created for undecodable photo")
	}
}

func TestListAlbums(t *testing.T) {
	g, _, _ := newGallery(t)
	ctx := context.Background()

	if _, err := g.CreateAlbum(ctx, "Empty Album"); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if _, err := g.CreateAlbum(ctx, "Summer Trip"); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if _, err := g.Upload(ctx, "summer-trip", "a.jpg", testJPEG(t, 40, 30)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := g.Upload(ctx, "summer-trip", "b.jpg", testJPEG(t, 40, 30)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	albums, err := g.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("ListAlbums failed: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("ListAlbums returned %d albums; want 2", len(albums))
	}

	byID := map[string]Album{}
	for _, a := range albums {
		byID[a.ID] = a
	}

	empty := byID["empty-album"]
	if empty.PhotoCount != 0 || empty.Cover != "" {
		t.Errorf("empty album = %+v; want 0 photos, no cover", empty)
	}
	if empty.Name != "Empty Album" {
		t.Errorf("display name = %q; want Empty Album", empty.Name)
	}

	trip := byID["summer-trip"]
	if trip.PhotoCount != 2 {
		t.Errorf("summer-trip photo count = %d; want 2", trip.PhotoCount)
	}
	if !strings.Contains(trip.Cover, "/photos/albums/summer-trip/thumbs/") {
		t.Errorf("cover = %q; want a thumbnail URL", trip.Cover)
	}
}

func TestDeletePhotosRemovesCatalogRecord(t *testing.T) {
	g, blobs, catalogs := newGallery(t)
	ctx := context.Background()

	photo, err := g.Upload(ctx, "trip", "face.jpg", testJPEG(t, 40, 30))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Simulate a prior ingestion of the uploaded photo.
	seed := catalog.Catalog{{URL: photo.URL, Embedding: []float32{1, 0}}}
	if err := catalogs.Save(ctx, "trip", seed); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	result := g.DeletePhotos(ctx, "trip", []string{photo.ID})
	if result.Deleted != 1 || len(result.Errors) != 0 {
		t.Fatalf("DeletePhotos = %+v; want 1 deleted", result)
	}

	if blobs.Has("albums/trip/" + photo.ID) {
		t.Error("photo object still present after deletion")
	}
	cat, err := catalogs.Load(ctx, "trip")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat) != 0 {
		t.Errorf("catalog still holds %d records after photo deletion", len(cat))
	}
}

func TestDeletePhotosRejectsInvalidIDs(t *testing.T) {
	g, _, _ := newGallery(t)

	result := g.DeletePhotos(context.Background(), "trip", []string{"../escape", ""})
	if result.Deleted != 0 || len(result.Errors) != 2 {
		t.Errorf("DeletePhotos = %+v; want 0 deleted, 2 errors", result)
	}
}

func TestThumbnailShrinksLargeImages(t *testing.T) {
	data := testJPEG(t, 1280, 640)

	thumb, err := Thumbnail(data, 320)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumbnail does not decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 160 {
		t.Errorf("thumbnail size = %dx%d; want 320x160", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("garbage"), 320); err == nil {
		t.Error("Thumbnail on garbage succeeded; want error")
	}
}
