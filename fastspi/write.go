package fastspi

import (
	"fmt"
	"time"
)

// RawWriter writes into an already open bracket. Adjusters use it to emit
// trailing protocol bytes from PostBlock.
type RawWriter interface {
	WriteBytesValueRaw(value byte, n int) error
}

// WriteByte puts b in the transmit register and returns without waiting for
// it to be shifted out.
func (o *Output[D, C]) WriteByte(b byte) error {
	if !o.initialized {
		return ErrNotInitialized
	}
	if err := o.bus.WriteData(b); err != nil {
		return fmt.Errorf("fastspi: write: %w", err)
	}
	return nil
}

// WriteWord writes the high byte then the low byte.
func (o *Output[D, C]) WriteWord(w uint16) error {
	if err := o.WriteByte(byte(w >> 8)); err != nil {
		return err
	}
	return o.WriteByte(byte(w))
}

// Wait polls the transmit-empty flag until it is set or the drain deadline
// passes.
func (o *Output[D, C]) Wait() error {
	start := time.Now()
	for {
		empty, err := o.bus.TxEmpty()
		if err != nil {
			return fmt.Errorf("fastspi: drain: %w", err)
		}
		if empty {
			return nil
		}
		if waited := time.Since(start); waited > o.timeout {
			return &HardwareTimeout{Op: "drain", After: waited}
		}
	}
}

// WaitFully waits until all queued data has been written.
func (o *Output[D, C]) WaitFully() error {
	return o.Wait()
}

// WriteBytesValueRaw writes n copies of value. It neither selects, waits nor
// releases.
func (o *Output[D, C]) WriteBytesValueRaw(value byte, n int) error {
	for ; n > 0; n-- {
		if err := o.WriteByte(value); err != nil {
			return err
		}
	}
	return nil
}

// WriteBytesValue writes n copies of value as one full transaction.
func (o *Output[D, C]) WriteBytesValue(value byte, n int) error {
	if err := o.Select(); err != nil {
		return err
	}
	return o.finish(o.WriteBytesValueRaw(value, n))
}

// WriteBytes writes data unmodified as one full transaction.
func (o *Output[D, C]) WriteBytes(data []byte) error {
	return o.WriteBytesAdjusted(data, Nop{})
}

// WriteBytesAdjusted writes data as one full transaction, passing each byte
// through adj. adj.PostBlock runs once after the last byte.
func (o *Output[D, C]) WriteBytesAdjusted(data []byte, adj Adjuster) error {
	if err := o.Select(); err != nil {
		return err
	}
	return o.finish(o.writeAdjusted(data, adj))
}

func (o *Output[D, C]) writeAdjusted(data []byte, adj Adjuster) error {
	for _, b := range data {
		if err := o.WriteByte(adj.Adjust(b)); err != nil {
			return err
		}
	}
	return adj.PostBlock(o, len(data))
}
