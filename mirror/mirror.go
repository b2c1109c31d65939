// Package mirror keeps a fixed-size target in sync with a caller-owned state
// buffer, writing only the byte ranges that changed since the last sync.
//
// The target is anything addressable by offset, typically a file or a device
// interface wrapped in an [io.WriterAt]. Mirror remembers the last state it
// wrote (the shadow) and on every sync diffs the shadow against the new state,
// issuing one write per changed range.
package mirror

import (
	"fmt"
	"io"

	"znkr.io/rundiff"
)

// Mirror tracks the last state written to a fixed-size target.
//
// A Mirror is not safe for concurrent use.
type Mirror struct {
	w      io.WriterAt
	shadow []byte
	dirty  bool // shadow does not reflect the target, next sync writes everything
}

// New returns a Mirror for a target of the given size. The shadow starts out
// invalid, so the first [Mirror.Sync] writes the full state. Use
// [Mirror.Reset] first if the target is known to already hold a state.
func New(w io.WriterAt, size int) *Mirror {
	return &Mirror{
		w:      w,
		shadow: make([]byte, size),
		dirty:  true,
	}
}

// Size returns the size of the mirrored target.
func (m *Mirror) Size() int { return len(m.shadow) }

// Reset records state as what the target currently holds, without writing
// anything. The next sync diffs against it.
func (m *Mirror) Reset(state []byte) error {
	if len(state) != len(m.shadow) {
		return fmt.Errorf("state is %d bytes, target is %d bytes", len(state), len(m.shadow))
	}
	copy(m.shadow, state)
	m.dirty = false
	return nil
}

// Invalidate discards the shadow. The next sync rewrites the full state, for
// example after the target was reset or written to by someone else.
func (m *Mirror) Invalidate() {
	m.dirty = true
}

// Sync brings the target up to date with state, writing only the ranges that
// differ from the last synced state. It returns the number of bytes written.
//
// If a write fails, Sync stops and returns the error. Ranges written before
// the failure are recorded in the shadow, so a later sync does not repeat
// them; the failed range stays dirty and is retried.
func (m *Mirror) Sync(state []byte) (written int, err error) {
	if len(state) != len(m.shadow) {
		return 0, fmt.Errorf("state is %d bytes, target is %d bytes", len(state), len(m.shadow))
	}
	if m.dirty {
		if _, err := m.w.WriteAt(state, 0); err != nil {
			return 0, fmt.Errorf("writing %d bytes at offset 0: %w", len(state), err)
		}
		copy(m.shadow, state)
		m.dirty = false
		return len(state), nil
	}
	err = rundiff.TryDiff(m.shadow, state, func(offset int, run []byte) error {
		if _, err := m.w.WriteAt(run, int64(offset)); err != nil {
			return fmt.Errorf("writing %d bytes at offset %d: %w", len(run), offset, err)
		}
		copy(m.shadow[offset:], run)
		written += len(run)
		return nil
	})
	return written, err
}
