package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
)

func wavBytes(t *testing.T, format, bits uint16, sampleRate uint32, seconds int) []byte {
	t.Helper()
	channels := uint16(1)
	byteRate := sampleRate * uint32(channels) * uint32(bits) / 8
	dataSize := byteRate * uint32(seconds)
	h := waveHeader{
		FileSize:      36 + dataSize,
		FmtSize:       16,
		AudioFormat:   format,
		NumChannels:   channels,
		SampleRate:    sampleRate,
		ByteRate:      byteRate,
		BlockAlign:    channels * bits / 8,
		BitsPerSample: bits,
		DataSize:      dataSize,
	}
	copy(h.RiffTag[:], "RIFF")
	copy(h.WaveTag[:], "WAVE")
	copy(h.FmtTag[:], "fmt ")
	copy(h.DataTag[:], "data")

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		t.Fatalf("write header: %v", err)
	}
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestParseWaveHeader(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		valid bool
	}{
		{"16-bit pcm", wavBytes(t, 1, 16, 16000, 1), true},
		{"8-bit pcm", wavBytes(t, 1, 8, 16000, 1), false},
		{"compressed", wavBytes(t, 3, 16, 16000, 1), false},
		{"truncated", []byte("RIFF"), false},
		{"not wav", append([]byte("OggS"), make([]byte, 60)...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseWaveHeader(tt.data)
			if tt.valid {
				if err != nil {
					t.Fatalf("parseWaveHeader: %v", err)
				}
				if h.SampleRate != 16000 || h.durationSeconds() != 1 {
					t.Errorf("header = %+v", h)
				}
				return
			}
			if !errors.Is(err, ErrInvalidAudio) {
				t.Errorf("err = %v, want ErrInvalidAudio", err)
			}
		})
	}
}

func TestTranscribeWithoutCredentials(t *testing.T) {
	_, err := NewGoogleTranscriber("").Transcribe(context.Background(), wavBytes(t, 1, 16, 16000, 1), "")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestTranscribeRejectsLongAudio(t *testing.T) {
	// Validation happens before any client is created.
	tr := NewGoogleTranscriber("/nonexistent/credentials.json")
	_, err := tr.Transcribe(context.Background(), wavBytes(t, 1, 16, 8000, MaxDurationSeconds+1), DefaultLanguage)
	if !errors.Is(err, ErrInvalidAudio) {
		t.Errorf("err = %v, want ErrInvalidAudio", err)
	}
}
