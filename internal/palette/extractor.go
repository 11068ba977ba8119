// Package palette derives a fixed-size color palette from moodboard images.
package palette

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TripIdeas/internal/domain"
)

// DefaultPalette is returned when nothing could be extracted at all.
var DefaultPalette = []string{"#2e4057", "#048ba8", "#f18f01", "#c73e1d", "#99c24d"}

// syntheticColors pads partial palettes.
var syntheticColors = []string{"#264653", "#2a9d8f", "#e9c46a", "#f4a261", "#e76f51", "#8ecae6"}

// Config tunes extraction.
type Config struct {
	// BaseURL resolves relative image locators such as "/uploads/a.jpg".
	BaseURL   string        `yaml:"baseUrl"`
	MaxImages int           `yaml:"maxImages"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"maxBytes"`
	// MaxPixels bounds declared image dimensions before decoding.
	MaxPixels int           `yaml:"maxPixels"`
}

// Extractor samples images over HTTP and classifies their swatches.
type Extractor struct {
	client *http.Client
	cfg    Config
	base   *url.URL
	logger *slog.Logger
}

// New builds an extractor. Defaults: 3 images, 10s per image, 20 MiB per
// download, 40 megapixels per image.
func New(client *http.Client, cfg Config, log *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = 40_000_000
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		if parsed, err := url.Parse(cfg.BaseURL); err == nil && parsed.IsAbs() {
			base = parsed
		} else {
			log.Warn("ignoring invalid palette base url", "base_url", cfg.BaseURL)
		}
	}

	return &Extractor{client: client, cfg: cfg, base: base, logger: log}
}

// Extract always returns exactly domain.PaletteSize colors.
func (e *Extractor) Extract(ctx context.Context, imageURLs []string) []string {
	colors := make([]string, 0, domain.PaletteSize)

	for i, raw := range imageURLs {
		if i >= e.cfg.MaxImages || len(colors) >= domain.PaletteSize {
			break
		}

		swatches, err := e.extractOne(ctx, raw)
		if err != nil {
			e.logger.Warn("palette extraction failed, skipping image", "url", raw, "error", err)
			continue
		}

		for _, name := range SwatchOrder {
			if c, ok := swatches[name]; ok {
				colors = append(colors, c)
				if len(colors) == domain.PaletteSize {
					break
				}
			}
		}
	}

	if len(colors) == 0 {
		e.logger.Info("no colors extracted, using default palette", "images", len(imageURLs))
		return append([]string(nil), DefaultPalette...)
	}
	return pad(colors)
}

func pad(colors []string) []string {
	present := make(map[string]bool, len(colors))
	for _, c := range colors {
		present[c] = true
	}
	for i := 0; len(colors) < domain.PaletteSize; i++ {
		c := syntheticColors[i%len(syntheticColors)]
		if present[c] && i < len(syntheticColors) {
			continue
		}
		colors = append(colors, c)
		present[c] = true
	}
	return colors
}

func (e *Extractor) extractOne(ctx context.Context, raw string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	target, err := e.resolve(raw)
	if err != nil {
		return nil, err
	}

	img, err := e.fetchImage(ctx, target, true)
	if err != nil {
		return nil, err
	}
	return Swatches(img), nil
}

// resolve turns relative locators into absolute URLs against the configured base.
func (e *Extractor) resolve(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %v", domain.ErrExtractionFailure, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if e.base == nil {
		return "", fmt.Errorf("%w: relative url %q without base", domain.ErrExtractionFailure, raw)
	}
	return e.base.ResolveReference(parsed).String(), nil
}

func (e *Extractor) fetchImage(ctx context.Context, target string, followPage bool) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TripIdeas/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", domain.ErrExtractionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrExtractionFailure, target, resp.Status)
	}

	body := io.LimitReader(resp.Body, e.cfg.MaxBytes)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/html" {
		if !followPage {
			return nil, fmt.Errorf("%w: %s is a page, not an image", domain.ErrExtractionFailure, target)
		}
		imgURL, err := pageImage(body, resp.Request.URL)
		if err != nil {
			return nil, err
		}
		return e.fetchImage(ctx, imgURL, false)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", domain.ErrExtractionFailure, err)
	}
	return e.decode(data)
}

// decode checks the declared dimensions before allocating the image.
func (e *Extractor) decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrExtractionFailure, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > e.cfg.MaxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: image dimensions %dx%d too large", domain.ErrExtractionFailure, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrExtractionFailure, err)
	}
	return img, nil
}

// pageImage finds the og:image (or first <img>) of an HTML page.
func pageImage(r io.Reader, pageURL *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %v", domain.ErrExtractionFailure, err)
	}

	src, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || strings.TrimSpace(src) == "" {
		src, ok = doc.Find("img[src]").First().Attr("src")
	}
	if !ok || strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("%w: page has no image", domain.ErrExtractionFailure)
	}

	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", fmt.Errorf("%w: page image url: %v", domain.ErrExtractionFailure, err)
	}
	return pageURL.ResolveReference(ref).String(), nil
}
