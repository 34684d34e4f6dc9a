package ast

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Program images are canonical CBOR encodings of a parsed Program. They let
// a program be run again without going back through the XML front end.

const (
	imageMagic   = "SOLIMG"
	ImageVersion = 1
)

type image struct {
	Magic   string   `cbor:"magic"`
	Version int      `cbor:"version"`
	Program *Program `cbor:"program"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// EncodeImage serializes a program to image bytes.
func EncodeImage(p *Program) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("ast: encode image: nil program")
	}
	return imageEncMode.Marshal(&image{Magic: imageMagic, Version: ImageVersion, Program: p})
}

// DecodeImage deserializes image bytes produced by EncodeImage.
// The returned program is already normalized.
func DecodeImage(data []byte) (*Program, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("ast: decode image: %w", err)
	}
	if img.Magic != imageMagic {
		return nil, fmt.Errorf("ast: decode image: bad magic %q", img.Magic)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("ast: decode image: unsupported version %d", img.Version)
	}
	if img.Program == nil {
		return nil, fmt.Errorf("ast: decode image: missing program")
	}
	if err := img.Program.Check(); err != nil {
		return nil, fmt.Errorf("ast: decode image: %w", err)
	}
	img.Program.Normalize()
	return img.Program, nil
}
