package media_storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// probeDimensions decodes the image and reports its displayed size, honouring the EXIF
// orientation tag so portrait phone photos are not reported as landscape.
func probeDimensions(data []byte) (width, height int, err error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
