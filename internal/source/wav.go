package source

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder implements Decoder for PCM WAV files.
type WAVDecoder struct {
	decoder  *wav.Decoder
	file     *os.File
	numChans int
	scale    float32
	intBuf   *audio.IntBuffer
}

// NewWAVDecoder opens filename and positions the decoder at the PCM data.
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", filename)
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	numChans := int(decoder.NumChans)
	return &WAVDecoder{
		decoder:  decoder,
		file:     f,
		numChans: numChans,
		scale:    1 / float32(audio.IntMaxSignedValue(int(decoder.BitDepth))),
		intBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChans,
				SampleRate:  int(decoder.SampleRate),
			},
		},
	}, nil
}

func (d *WAVDecoder) Read(dst []float32) (int, error) {
	want := len(dst) * d.numChans
	if cap(d.intBuf.Data) < want {
		d.intBuf.Data = make([]int, want)
	}
	d.intBuf.Data = d.intBuf.Data[:want]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	frames := n / d.numChans
	for i := range frames {
		var sum float32
		for ch := range d.numChans {
			sum += float32(d.intBuf.Data[i*d.numChans+ch])
		}
		dst[i] = sum * d.scale / float32(d.numChans)
	}
	return frames, nil
}

func (d *WAVDecoder) SampleRate() int {
	return d.intBuf.Format.SampleRate
}

func (d *WAVDecoder) NumChannels() int {
	return d.numChans
}

func (d *WAVDecoder) Close() error {
	return d.file.Close()
}
