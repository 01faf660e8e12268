// Package exiftest builds minimal JPEG images carrying EXIF GPS tags for use in tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/kisszoltan/coordex/coords"
)

const (
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

const (
	tagMake     uint16 = 0x010F
	tagDateTime uint16 = 0x0132
	tagGPSInfo  uint16 = 0x8825

	tagGPSLatitudeRef  uint16 = 0x0001
	tagGPSLatitude     uint16 = 0x0002
	tagGPSLongitudeRef uint16 = 0x0003
	tagGPSLongitude    uint16 = 0x0004
)

// Options describes the EXIF tags written by JPEG.
type Options struct {
	// If nil no GPS latitude tags are written.
	Latitude *coords.DMS
	// If nil no GPS longitude tags are written.
	Longitude *coords.DMS
	// An optional "2006:01:02 15:04:05" timestamp written as the DateTime tag.
	DateTime string
}

// JPEG returns a JPEG stream with an APP1 EXIF segment built from opts. The
// stream has no image data, which is enough for EXIF decoders.
func JPEG(opts *Options) []byte {

	if opts == nil {
		opts = &Options{}
	}

	ifd0 := ifd{
		{tag: tagMake, typ: typeASCII, value: ascii("coordex")},
	}

	if opts.DateTime != "" {
		ifd0 = append(ifd0, entry{tag: tagDateTime, typ: typeASCII, value: ascii(opts.DateTime)})
	}

	gps := ifd{}

	if opts.Latitude != nil {
		gps = append(gps, entry{tag: tagGPSLatitudeRef, typ: typeASCII, value: ascii(opts.Latitude.Ref)})
		gps = append(gps, entry{tag: tagGPSLatitude, typ: typeRational, value: rationals(opts.Latitude)})
	}

	if opts.Longitude != nil {
		gps = append(gps, entry{tag: tagGPSLongitudeRef, typ: typeASCII, value: ascii(opts.Longitude.Ref)})
		gps = append(gps, entry{tag: tagGPSLongitude, typ: typeRational, value: rationals(opts.Longitude)})
	}

	// TIFF header is 8 bytes; IFD0 follows immediately.
	ifd0_offset := uint32(8)

	if len(gps) > 0 {
		// The pointer entry is 4 bytes inline so adding it first keeps the size stable.
		ifd0 = append(ifd0, entry{tag: tagGPSInfo, typ: typeLong, value: make([]byte, 4)})
		gps_offset := ifd0_offset + uint32(ifd0.size())
		binary.LittleEndian.PutUint32(ifd0[len(ifd0)-1].value, gps_offset)
	}

	tiff := []byte{'I', 'I', 42, 0}
	tiff = binary.LittleEndian.AppendUint32(tiff, ifd0_offset)
	tiff = append(tiff, ifd0.encode(ifd0_offset)...)

	if len(gps) > 0 {
		tiff = append(tiff, gps.encode(uint32(len(tiff)))...)
	}

	return wrap(tiff)
}

// JPEGWithImage returns the JPEG encoding of im with an APP1 EXIF segment built from
// opts inserted after the start of image marker.
func JPEGWithImage(opts *Options, im image.Image) ([]byte, error) {

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, im, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to encode image, %w", err)
	}

	encoded := buf.Bytes()
	exif := JPEG(opts)

	// Drop the EOI marker from the EXIF stream and the SOI marker from the encoded image.
	body := append([]byte{}, exif[0:len(exif)-2]...)
	body = append(body, encoded[2:]...)

	return body, nil
}

// JPEGWithoutGPS returns a JPEG stream with an EXIF segment that has no GPS tags.
func JPEGWithoutGPS() []byte {
	return JPEG(&Options{DateTime: "2024:05:01 10:00:00"})
}

// JPEGWithoutExif returns a JPEG stream with a JFIF APP0 segment and no EXIF data.
func JPEGWithoutExif() []byte {

	var buf bytes.Buffer

	buf.Write([]byte{0xFF, 0xD8})
	buf.Write([]byte{0xFF, 0xE0, 0x00, 0x10})
	buf.WriteString("JFIF\x00")
	buf.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00})
	buf.Write([]byte{0xFF, 0xD9})

	return buf.Bytes()
}

// DMS is a convenience wrapper for building a *coords.DMS.
func DMS(degrees float64, minutes float64, seconds float64, ref string) *coords.DMS {
	d := coords.NewDMS([3]float64{degrees, minutes, seconds}, ref)
	return &d
}

func wrap(tiff []byte) []byte {

	var buf bytes.Buffer

	payload := append([]byte("Exif\x00\x00"), tiff...)

	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})

	return buf.Bytes()
}

type entry struct {
	tag   uint16
	typ   uint16
	value []byte
}

func (e entry) count() uint32 {

	switch e.typ {
	case typeRational:
		return uint32(len(e.value) / 8)
	case typeLong:
		return uint32(len(e.value) / 4)
	default:
		return uint32(len(e.value))
	}
}

type ifd []entry

func (d ifd) size() int {

	n := 2 + 12*len(d) + 4

	for _, e := range d {
		if len(e.value) > 4 {
			n += len(e.value) + len(e.value)%2
		}
	}

	return n
}

// encode serializes d assuming it starts at offset bytes from the start of the TIFF header.
func (d ifd) encode(offset uint32) []byte {

	order := binary.LittleEndian

	buf := make([]byte, 0, d.size())
	buf = order.AppendUint16(buf, uint16(len(d)))

	data_offset := offset + uint32(2+12*len(d)+4)
	data := make([]byte, 0)

	for _, e := range d {

		buf = order.AppendUint16(buf, e.tag)
		buf = order.AppendUint16(buf, e.typ)
		buf = order.AppendUint32(buf, e.count())

		if len(e.value) <= 4 {
			v := make([]byte, 4)
			copy(v, e.value)
			buf = append(buf, v...)
			continue
		}

		buf = order.AppendUint32(buf, data_offset+uint32(len(data)))
		data = append(data, e.value...)

		if len(e.value)%2 == 1 {
			data = append(data, 0)
		}
	}

	buf = order.AppendUint32(buf, 0)
	return append(buf, data...)
}

func ascii(s string) []byte {
	return append([]byte(s), 0)
}

func rationals(d *coords.DMS) []byte {

	order := binary.LittleEndian
	buf := make([]byte, 0, 24)

	for _, v := range []float64{d.Degrees, d.Minutes, d.Seconds} {
		buf = order.AppendUint32(buf, uint32(math.Round(v*1000)))
		buf = order.AppendUint32(buf, 1000)
	}

	return buf
}
