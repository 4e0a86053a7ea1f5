package service

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const avatarSize = 128

var avatarPalette = []color.RGBA{
	{R: 17, G: 24, B: 39, A: 255},
	{R: 30, G: 64, B: 175, A: 255},
	{R: 6, G: 95, B: 70, A: 255},
	{R: 146, G: 64, B: 14, A: 255},
	{R: 107, G: 33, B: 168, A: 255},
	{R: 159, G: 18, B: 57, A: 255},
}

// AvatarService renders initial-letter avatars for commenters. Images are
// kept in memory keyed by initial, so at most one render per letter.
type AvatarService struct {
	mu     sync.Mutex
	face   font.Face
	images sync.Map
}

func NewAvatarService() (*AvatarService, error) {
	fontData, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(fontData, &opentype.FaceOptions{
		Size:    float64(avatarSize) * 0.5,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}

	return &AvatarService{face: face}, nil
}

// AvatarKey maps a display name to the key used in avatar URLs.
func AvatarKey(name string) string {
	_, key := resolveInitial(name)
	if key == "" {
		return "anon"
	}
	return key
}

// PNG returns the encoded avatar for a key produced by AvatarKey.
func (s *AvatarService) PNG(key string) ([]byte, error) {
	glyph, ok := glyphForKey(key)
	if !ok {
		return nil, fmt.Errorf("avatar %q: %w", key, ErrNotFound)
	}

	if cached, ok := s.images.Load(key); ok {
		return cached.([]byte), nil
	}

	// font.Face is not safe for concurrent use.
	s.mu.Lock()
	img := s.render(glyph, paletteColor(key))
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	encoded := buf.Bytes()
	s.images.Store(key, encoded)
	return encoded, nil
}

func (s *AvatarService) render(letter string, background color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	if letter == "" {
		return img
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: s.face,
	}

	bounds, _ := font.BoundString(s.face, letter)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := (avatarSize - textWidth) / 2
	y := (avatarSize+textHeight)/2 - int(math.Round(float64(avatarSize)*0.05))

	d.Dot = fixed.P(x, y)
	d.DrawString(letter)

	return img
}

func resolveInitial(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ""
	}

	r, _ := utf8.DecodeRuneInString(trimmed)
	if r == utf8.RuneError {
		return "", ""
	}

	glyph := strings.ToUpper(string(r))
	key := strings.ToLower(glyph)
	if len(key) != 1 || !isASCIIAlphaNumeric(key[0]) {
		key = fmt.Sprintf("u%x", r)
	}
	return glyph, key
}

// glyphForKey reverses AvatarKey. Unknown shapes are rejected so the cache stays bounded.
func glyphForKey(key string) (string, bool) {
	switch {
	case key == "anon":
		return "", true
	case len(key) == 1 && isASCIIAlphaNumeric(key[0]):
		return strings.ToUpper(key), true
	case strings.HasPrefix(key, "u") && len(key) > 1 && len(key) <= 7:
		var r rune
		if _, err := fmt.Sscanf(key[1:], "%x", &r); err != nil || !utf8.ValidRune(r) {
			return "", false
		}
		if fmt.Sprintf("u%x", r) != key {
			return "", false
		}
		return string(r), true
	default:
		return "", false
	}
}

func isASCIIAlphaNumeric(value byte) bool {
	return (value >= 'a' && value <= 'z') || (value >= '0' && value <= '9')
}

func paletteColor(key string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}
