package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// mp3FrameBytes is the size of one decoded frame: go-mp3 always outputs
// interleaved 16-bit little-endian stereo.
const mp3FrameBytes = 4

// MP3Decoder implements Decoder for MP3 files.
type MP3Decoder struct {
	decoder *mp3.Decoder
	file    *os.File
	buf     []byte
}

// NewMP3Decoder opens filename and reads the first frame header.
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Decoder{decoder: decoder, file: f}, nil
}

func (d *MP3Decoder) Read(dst []float32) (int, error) {
	want := len(dst) * mp3FrameBytes
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	buf := d.buf[:want]

	n, err := io.ReadFull(d.decoder, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("failed to read MP3 data: %w", err)
	}
	if n < mp3FrameBytes {
		return 0, io.EOF
	}
	return downmixStereo16(dst, buf[:n-n%mp3FrameBytes]), nil
}

// downmixStereo16 averages interleaved little-endian 16-bit stereo frames
// into dst and returns the number of frames written.
func downmixStereo16(dst []float32, buf []byte) int {
	frames := len(buf) / mp3FrameBytes
	for i := range frames {
		left := int16(binary.LittleEndian.Uint16(buf[i*4:]))
		right := int16(binary.LittleEndian.Uint16(buf[i*4+2:]))
		dst[i] = (float32(left) + float32(right)) / (2 * 32768)
	}
	return frames
}

func (d *MP3Decoder) SampleRate() int {
	return d.decoder.SampleRate()
}

func (d *MP3Decoder) NumChannels() int {
	return 2
}

func (d *MP3Decoder) Close() error {
	return d.file.Close()
}
