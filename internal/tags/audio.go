package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/llehouerou/go-mp3"
)

// ErrUnsupportedAudio is returned for formats whose duration is not read.
var ErrUnsupportedAudio = errors.New("unsupported audio format")

// ReadAudioInfo reads audio stream properties without decoding the stream.
// Only MP3 and FLAC are supported.
func ReadAudioInfo(path string) (*AudioInfo, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtMP3:
		return readMP3AudioInfo(path)
	case ExtFLAC:
		return readFLACStreamInfo(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, ext)
	}
}

// readMP3AudioInfo extracts audio info from an MP3 file.
func readMP3AudioInfo(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return nil, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)

	return &AudioInfo{
		Duration:   time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second)),
		Format:     "MP3",
		SampleRate: sampleRate,
	}, nil
}

// readFLACStreamInfo extracts audio info from FLAC streaminfo metadata.
func readFLACStreamInfo(path string) (*AudioInfo, error) {
	flacFile, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	for _, meta := range flacFile.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		sampleRate, totalSamples := parseStreamInfo(meta.Data)

		var duration time.Duration
		if sampleRate > 0 {
			duration = time.Duration(float64(totalSamples) / float64(sampleRate) * float64(time.Second))
		}
		return &AudioInfo{
			Duration:   duration,
			Format:     "FLAC",
			SampleRate: sampleRate,
		}, nil
	}

	return nil, errors.New("flac: no streaminfo block")
}

// parseStreamInfo decodes the sample rate (20 bits from byte 10) and the
// total sample count (36 bits from the low nibble of byte 13).
func parseStreamInfo(data []byte) (sampleRate int, totalSamples int64) {
	sampleRate = int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
	totalSamples = int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
	return sampleRate, totalSamples
}
