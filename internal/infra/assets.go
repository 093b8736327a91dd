package infra

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// AssetURLPrefix is the URL path the assets directory is served under.
const AssetURLPrefix = "/assets/"

// HeroPreparer resizes and caches the hero banner image
type HeroPreparer struct {
	basePath string
	client   *http.Client
}

// NewHeroPreparer creates a HeroPreparer writing into dir
func NewHeroPreparer(dir string) (*HeroPreparer, error) {
	if dir == "" {
		return nil, fmt.Errorf("assets directory is required")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &HeroPreparer{
		basePath: dir,
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Prepare produces a copy of source resized to width (aspect preserved)
// and returns its URL path under AssetURLPrefix. source is a local file or
// an http(s) URL. An existing cached file is reused.
func (p *HeroPreparer) Prepare(ctx context.Context, source string, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("invalid width: %d", width)
	}

	fileName := CachedHeroName(source, width)
	if fileName == "" {
		return "", fmt.Errorf("invalid hero source: %q", source)
	}
	filePath := filepath.Join(p.basePath, fileName)

	// Check if exists
	if _, err := os.Stat(filePath); err == nil {
		return AssetURLPrefix + fileName, nil // Cache Hit
	}

	src, err := p.open(ctx, source)
	if err != nil {
		return "", err
	}
	defer src.Close()

	srcImg, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Never upscale
	resized := srcImg
	if srcImg.Bounds().Dx() > width {
		resized = imaging.Resize(srcImg, width, 0, imaging.Lanczos)
	}

	if err := saveImage(resized, filePath); err != nil {
		return "", err
	}
	return AssetURLPrefix + fileName, nil
}

func (p *HeroPreparer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open hero source: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

func saveImage(img image.Image, filePath string) error {
	tmp := filePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	format, err := imaging.FormatFromFilename(filePath)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(85)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to save resized image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filePath)
}

// CachedHeroName derives the cache file name for a source and width.
// Returns "" when nothing usable remains after sanitising.
func CachedHeroName(source string, width int) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		ext = ".jpg"
	}

	stem := sanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d%s", strings.ToLower(stem), width, ext)
}

func sanitizeName(name string) string {
	res := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			res = append(res, r)
		}
	}
	return string(res)
}
