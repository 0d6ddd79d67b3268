package fastspi

// Flags select per-pixel protocol framing.
type Flags uint8

const (
	// FlagStartBit writes the start marker before each pixel's channel bytes.
	FlagStartBit Flags = 1 << iota
)

// Adjuster transforms bytes on their way to the wire.
type Adjuster interface {
	Adjust(b byte) byte
	// PostBlock runs once per block, after its last byte was written and
	// before the drain. n is the block length in bytes for WriteBytes and in
	// pixels for WritePixels.
	PostBlock(w RawWriter, n int) error
}

// Nop passes bytes through and writes nothing after a block.
type Nop struct{}

func (Nop) Adjust(b byte) byte                 { return b }
func (Nop) PostBlock(w RawWriter, n int) error { return nil }

// PixelSource is a single-pass sequence of pixels. The source owns color
// order, brightness and dithering; the driver only moves its bytes.
type PixelSource interface {
	// Len is the total number of pixels in the sequence.
	Len() int
	// Has reports whether at least n pixels remain.
	Has(n int) bool
	LoadAndScale0() byte
	LoadAndScale1() byte
	LoadAndScale2() byte
	AdvanceData()
	StepDithering()
}

// WritePixels writes the whole of src as one transaction.
func (o *Output[D, C]) WritePixels(flags Flags, adj Adjuster, src PixelSource) error {
	n := src.Len()
	if err := o.Select(); err != nil {
		return err
	}
	return o.finish(o.writePixels(flags, adj, src, n))
}

func (o *Output[D, C]) writePixels(flags Flags, adj Adjuster, src PixelSource, n int) error {
	for src.Has(1) {
		if flags&FlagStartBit != 0 {
			if err := o.WriteByte(o.marker); err != nil {
				return err
			}
		}
		if err := o.WriteByte(adj.Adjust(src.LoadAndScale0())); err != nil {
			return err
		}
		if err := o.WriteByte(adj.Adjust(src.LoadAndScale1())); err != nil {
			return err
		}
		if err := o.WriteByte(adj.Adjust(src.LoadAndScale2())); err != nil {
			return err
		}
		src.AdvanceData()
		src.StepDithering()
	}
	return adj.PostBlock(o, n)
}
