package source

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// FLACDecoder implements Decoder for FLAC files. Format details come from
// the STREAMINFO block.
type FLACDecoder struct {
	stream  *flac.Stream
	scale   float32
	pending []float32 // decoded samples of the current frame not yet returned
}

// NewFLACDecoder opens filename and parses the stream header.
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	stream, err := flac.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}
	if stream.Info.BitsPerSample == 0 || stream.Info.NChannels == 0 {
		stream.Close()
		return nil, fmt.Errorf("invalid FLAC stream info in %s", filename)
	}

	return &FLACDecoder{
		stream: stream,
		scale:  1 / float32(int64(1)<<(stream.Info.BitsPerSample-1)),
	}, nil
}

func (d *FLACDecoder) Read(dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		if len(d.pending) == 0 {
			f, err := d.stream.ParseNext()
			if err == io.EOF {
				break
			}
			if err != nil {
				return n, fmt.Errorf("failed to parse FLAC frame: %w", err)
			}
			d.pending = downmixFrame(d.pending[:0], f, d.scale)
		}
		c := copy(dst[n:], d.pending)
		d.pending = d.pending[c:]
		n += c
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// downmixFrame appends the channel average of every sample in f to dst.
func downmixFrame(dst []float32, f *frame.Frame, scale float32) []float32 {
	if len(f.Subframes) == 0 {
		return dst
	}
	channels := float32(len(f.Subframes))
	for i := range f.Subframes[0].Samples {
		var sum float32
		for _, sub := range f.Subframes {
			sum += float32(sub.Samples[i])
		}
		dst = append(dst, sum*scale/channels)
	}
	return dst
}

func (d *FLACDecoder) SampleRate() int {
	return int(d.stream.Info.SampleRate)
}

func (d *FLACDecoder) NumChannels() int {
	return int(d.stream.Info.NChannels)
}

func (d *FLACDecoder) Close() error {
	return d.stream.Close()
}
