package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"regexp"

	xdraw "golang.org/x/image/draw"
)

var (
	dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

	errEmptySignature = errors.New("empty signature")
)

// maxSignatureWidth bounds the embedded raster; signature pads often
// capture at screen resolution.
const maxSignatureWidth = 600

// DecodeSignature turns a signature data URI into PNG bytes ready to be
// embedded. A bare base64 payload without the data URI prefix is accepted.
func DecodeSignature(dataURI string) ([]byte, error) {
	payload := dataURIPrefix.ReplaceAllString(dataURI, "")
	if payload == "" {
		return nil, errEmptySignature
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode signature payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode signature image: %w", err)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, downscale(img, maxSignatureWidth)); err != nil {
		return nil, fmt.Errorf("encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale keeps the aspect ratio and never enlarges.
func downscale(src image.Image, maxW int) image.Image {
	bw := src.Bounds().Dx()
	bh := src.Bounds().Dy()
	if bw <= maxW {
		return src
	}

	scale := float64(maxW) / float64(bw)
	h := int(math.Max(1, math.Round(float64(bh)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, maxW, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
