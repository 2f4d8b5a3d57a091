// Package imgfile saves and loads sparse, compressed snapshots of a
// disk. Only non-zero blocks are stored.
package imgfile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-journal/util"
)

type Codec uint64

const (
	CodecNone Codec = 0
	CodecLZ4  Codec = 1
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	}
	return fmt.Sprintf("codec(%d)", uint64(c))
}

func ParseCodec(s string) (Codec, error) {
	for _, c := range []Codec{CodecNone, CodecLZ4, CodecZSTD} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown codec %q", s)
}

const (
	imgMagic uint64 = 0x31474d4953464e49 // "INFSIMG1"
	hdrSz    uint64 = 3 * 8
	endBnum  uint64 = ^uint64(0)
)

var ErrBadImage = errors.New("not an image file")

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func compressor(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case CodecNone:
		return nopCloser{w}, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	}
	return nil, fmt.Errorf("save: unknown codec %d", uint64(c))
}

func decompressor(r io.Reader, c Codec) (io.Reader, func(), error) {
	switch c {
	case CodecNone:
		return r, func() {}, nil
	case CodecLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CodecZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}
	return nil, nil, fmt.Errorf("load: unknown codec %d: %w", uint64(c), ErrBadImage)
}

func isZero(blk disk.Block) bool {
	for _, b := range blk {
		if b != 0 {
			return false
		}
	}
	return true
}

func putBnum(w io.Writer, bn uint64) error {
	enc := marshal.NewEnc(8)
	enc.PutInt(bn)
	_, err := w.Write(enc.Finish())
	return err
}

// Save writes a snapshot of d to w. The header is stored uncompressed;
// the block records that follow go through codec c.
func Save(d disk.Disk, w io.Writer, c Codec) error {
	enc := marshal.NewEnc(hdrSz)
	enc.PutInt(imgMagic)
	enc.PutInt(uint64(c))
	enc.PutInt(d.Size())
	if _, err := w.Write(enc.Finish()); err != nil {
		return err
	}
	cw, err := compressor(w, c)
	if err != nil {
		return err
	}
	var n uint64
	for bn := uint64(0); bn < d.Size(); bn++ {
		blk := d.Read(bn)
		if isZero(blk) {
			continue
		}
		if err := putBnum(cw, bn); err != nil {
			return err
		}
		if _, err := cw.Write(blk); err != nil {
			return err
		}
		n++
	}
	if err := putBnum(cw, endBnum); err != nil {
		return err
	}
	util.DPrintf(1, "Save: %d of %d blocks, codec %v\n", n, d.Size(), c)
	return cw.Close()
}

// Load reads a snapshot written by Save into a fresh memory disk.
func Load(r io.Reader) (disk.Disk, error) {
	hdr := make([]byte, hdrSz)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("load: header: %w", err)
	}
	dec := marshal.NewDec(hdr)
	if dec.GetInt() != imgMagic {
		return nil, ErrBadImage
	}
	c := Codec(dec.GetInt())
	sz := dec.GetInt()
	// block numbers on disk are 32 bits
	if sz == 0 || sz > math.MaxUint32 {
		return nil, fmt.Errorf("load: %d blocks: %w", sz, ErrBadImage)
	}
	cr, done, err := decompressor(r, c)
	if err != nil {
		return nil, err
	}
	defer done()

	d := disk.NewMemDisk(sz)
	bbuf := make([]byte, 8)
	for {
		if _, err := io.ReadFull(cr, bbuf); err != nil {
			return nil, fmt.Errorf("load: record: %w", err)
		}
		bn := marshal.NewDec(bbuf).GetInt()
		if bn == endBnum {
			break
		}
		if bn >= sz {
			return nil, fmt.Errorf("load: block %d beyond %d: %w", bn, sz, ErrBadImage)
		}
		blk := make(disk.Block, disk.BlockSize)
		if _, err := io.ReadFull(cr, blk); err != nil {
			return nil, fmt.Errorf("load: block %d: %w", bn, err)
		}
		d.Write(bn, blk)
	}
	return d, nil
}
