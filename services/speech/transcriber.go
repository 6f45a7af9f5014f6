package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

const (
	MaxDurationSeconds = 60              // 1 minute maximum
	MaxFileSize        = 5 * 1024 * 1024 // 5MB
	AllowedExtension   = ".wav"
	DefaultLanguage    = "en-US"
)

var (
	ErrInvalidAudio = errors.New("invalid audio")
	ErrUnavailable  = errors.New("speech recognition not configured")
)

// Transcriber turns a voice message into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

// parseWaveHeader reads the canonical 44-byte header and accepts only
// uncompressed 16-bit PCM.
func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("%w: WAV header too short", ErrInvalidAudio)
	}
	var h waveHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if string(h.RiffTag[:]) != "RIFF" || string(h.WaveTag[:]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidAudio)
	}
	if h.AudioFormat != 1 || h.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: expected 16-bit PCM, got format %d with %d bits", ErrInvalidAudio, h.AudioFormat, h.BitsPerSample)
	}
	if h.ByteRate == 0 || h.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalidAudio)
	}
	return &h, nil
}

func (h *waveHeader) durationSeconds() float64 {
	return float64(h.DataSize) / float64(h.ByteRate)
}

// GoogleTranscriber calls Cloud Speech-to-Text with a service account.
type GoogleTranscriber struct {
	credentialsPath string
}

func NewGoogleTranscriber(credentialsPath string) *GoogleTranscriber {
	return &GoogleTranscriber{credentialsPath: credentialsPath}
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if t == nil || t.credentialsPath == "" {
		return "", ErrUnavailable
	}
	header, err := parseWaveHeader(audio)
	if err != nil {
		return "", err
	}
	if header.durationSeconds() > MaxDurationSeconds {
		return "", fmt.Errorf("%w: audio longer than %d seconds", ErrInvalidAudio, MaxDurationSeconds)
	}
	if language == "" {
		language = DefaultLanguage
	}

	client, err := speech.NewClient(ctx, option.WithCredentialsFile(t.credentialsPath))
	if err != nil {
		return "", fmt.Errorf("failed to initialize speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   int32(header.SampleRate),
			LanguageCode:      language,
			AudioChannelCount: int32(header.NumChannels),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio[44:]},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript + " ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}
