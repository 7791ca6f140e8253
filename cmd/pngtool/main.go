// Command pngtool probes a PNG file and optionally re-encodes it, as a
// smoke test for the codec.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/daggerbot/axis/png"
)

func main() {
	var inPath string
	var outPath string
	var interlace bool
	flag.StringVar(&inPath, "png", "", "png file to inspect")
	flag.StringVar(&outPath, "out", "", "re-encode the image to this path")
	flag.BoolVar(&interlace, "adam7", false, "re-encode with Adam7 interlacing")
	flag.Parse()

	if inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	img, err := png.DecodeFile(inPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("decoded %s: %s", inPath, describe(img))

	if outPath == "" {
		return
	}
	if err := reencode(img, outPath, interlace); err != nil {
		log.Fatal(err)
	}
	log.Printf("re-encoded %s -> %s", inPath, outPath)
}

func describe(img png.DecodedImage) string {
	switch img := img.(type) {
	case *png.IndexedImage:
		w, h := img.Image.Size()
		return fmt.Sprintf("index %dx%d, %d palette entries", w, h, len(img.Palette))
	case *png.Gray8Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("gray8 %dx%d", w, h)
	case *png.Gray16Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("gray16 %dx%d", w, h)
	case *png.GrayAlpha8Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("gray alpha8 %dx%d", w, h)
	case *png.GrayAlpha16Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("gray alpha16 %dx%d", w, h)
	case *png.RGB8Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("rgb8 %dx%d", w, h)
	case *png.RGB16Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("rgb16 %dx%d", w, h)
	case *png.RGBA8Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("rgba8 %dx%d", w, h)
	case *png.RGBA16Image:
		w, h := img.Image.Size()
		return fmt.Sprintf("rgba16 %dx%d", w, h)
	default:
		return "unknown"
	}
}

func reencode(img png.DecodedImage, path string, adam7 bool) error {
	method := png.InterlaceNone
	if adam7 {
		method = png.InterlaceAdam7
	}
	switch img := img.(type) {
	case *png.IndexedImage:
		enc := png.NewIndexEncoder(img.Image)
		if err := enc.WithPalette(img.Palette); err != nil {
			return err
		}
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.Gray8Image:
		enc := png.NewGray8Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.Gray16Image:
		enc := png.NewGray16Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.GrayAlpha8Image:
		enc := png.NewGrayAlpha8Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.GrayAlpha16Image:
		enc := png.NewGrayAlpha16Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.RGB8Image:
		enc := png.NewRGB8Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.RGB16Image:
		enc := png.NewRGB16Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.RGBA8Image:
		enc := png.NewRGBA8Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	case *png.RGBA16Image:
		enc := png.NewRGBA16Encoder(img.Image)
		enc.WithInterlace(method)
		return enc.EncodeFile(path)
	default:
		return fmt.Errorf("pngtool: unsupported image variant %T", img)
	}
}
