// Package recorder stores named fixed-width time-series channels with
// chunked capacity growth.
package recorder

import (
	"fmt"

	"quadloop/internal/robot"
)

// DefaultChunk is how many columns every channel gains when the recorder
// runs out of room.
const DefaultChunk = 1000

// ChannelSpec declares one channel up front. The channel set is fixed at
// construction; there is no ad-hoc registration.
type ChannelSpec struct {
	Name  string
	Width int
}

type channel struct {
	width int
	rows  [][]float64 // width rows, each len == capacity
}

type Recorder struct {
	chunk    int
	capacity int
	written  int
	order    []string
	channels map[string]*channel
}

func New(initialCapacity, chunk int, specs []ChannelSpec) (*Recorder, error) {
	if initialCapacity <= 0 {
		return nil, fmt.Errorf("%w: recorder capacity %d", robot.ErrConfiguration, initialCapacity)
	}
	if chunk <= 0 {
		return nil, fmt.Errorf("%w: recorder chunk %d", robot.ErrConfiguration, chunk)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: recorder needs at least one channel", robot.ErrConfiguration)
	}

	r := &Recorder{
		chunk:    chunk,
		capacity: initialCapacity,
		channels: make(map[string]*channel, len(specs)),
	}
	for _, spec := range specs {
		if spec.Width <= 0 {
			return nil, fmt.Errorf("%w: channel %q width %d", robot.ErrConfiguration, spec.Name, spec.Width)
		}
		if _, dup := r.channels[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate channel %q", robot.ErrConfiguration, spec.Name)
		}
		ch := &channel{width: spec.Width, rows: make([][]float64, spec.Width)}
		for i := range ch.rows {
			ch.rows[i] = make([]float64, initialCapacity)
		}
		r.channels[spec.Name] = ch
		r.order = append(r.order, spec.Name)
	}
	return r, nil
}

func (r *Recorder) Capacity() int { return r.capacity }
func (r *Recorder) Written() int  { return r.written }

// Names returns the channel names in declaration order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Width returns the declared width of a channel, or 0 if unknown.
func (r *Recorder) Width(name string) int {
	if ch, ok := r.channels[name]; ok {
		return ch.width
	}
	return 0
}

// Append writes one column at the given index for every channel, growing
// all channels first if the index is past the current capacity. Columns
// below the index are never touched. Every declared channel must be
// present with its declared width; a partial column is rejected whole.
func (r *Recorder) Append(index int, values map[string][]float64) error {
	if index < 0 {
		return fmt.Errorf("recorder: negative index %d", index)
	}
	for _, name := range r.order {
		v, ok := values[name]
		if !ok {
			return fmt.Errorf("recorder: missing channel %q", name)
		}
		if len(v) != r.channels[name].width {
			return fmt.Errorf("recorder: channel %q expects width %d, got %d",
				name, r.channels[name].width, len(v))
		}
	}
	for name := range values {
		if _, ok := r.channels[name]; !ok {
			return fmt.Errorf("recorder: unknown channel %q", name)
		}
	}

	for index >= r.capacity {
		r.grow()
	}

	for _, name := range r.order {
		ch := r.channels[name]
		v := values[name]
		for row := 0; row < ch.width; row++ {
			ch.rows[row][index] = v[row]
		}
	}
	if index+1 > r.written {
		r.written = index + 1
	}
	return nil
}

func (r *Recorder) grow() {
	for _, ch := range r.channels {
		for row := range ch.rows {
			ch.rows[row] = append(ch.rows[row], make([]float64, r.chunk)...)
		}
	}
	r.capacity += r.chunk
}

// Export returns a copy of every channel trimmed to the written length,
// keyed by name. Shape per channel: width x written.
func (r *Recorder) Export() map[string][][]float64 {
	out := make(map[string][][]float64, len(r.channels))
	for _, name := range r.order {
		ch := r.channels[name]
		data := make([][]float64, ch.width)
		for row := range ch.rows {
			data[row] = make([]float64, r.written)
			copy(data[row], ch.rows[row][:r.written])
		}
		out[name] = data
	}
	return out
}
