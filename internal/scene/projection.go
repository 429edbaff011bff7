package scene

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// Project rebuilds a color image from the u/v/RGB columns of the cloud.
// Pixels outside the image are skipped; later points overwrite earlier ones.
// The result is what the external detector and classifier consume.
func Project(cloud PointCloud, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, p := range cloud {
		if p.U < 0 || p.U >= width || p.V < 0 || p.V >= height {
			continue
		}
		img.SetRGBA(p.U, p.V, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
	}
	return img
}

// WriteProjectionPNG encodes Project(cloud, width, height) as PNG.
func WriteProjectionPNG(w io.Writer, cloud PointCloud, width, height int) error {
	return png.Encode(w, Project(cloud, width, height))
}
