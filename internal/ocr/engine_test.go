package ocr

import (
	"context"
	"errors"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-extract/internal/common"
)

type stubRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
	sawPNG bool
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	if len(args) > 0 {
		if data, err := os.ReadFile(args[0]); err == nil {
			s.sawPNG = strings.HasPrefix(string(data), "\x89PNG")
		}
	}
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestTesseractEngineArgs(t *testing.T) {
	runner := &stubRunner{stdout: "ИТОГ 20.00\n"}
	engine := NewTesseractEngine(EngineConfig{Languages: "rus+eng", TessdataDir: "/td"}, runner, nil)

	profiles := DefaultProfiles()
	text, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)), profiles[3])
	require.NoError(t, err)

	assert.Equal(t, "ИТОГ 20.00\n", text)
	assert.Equal(t, "tesseract", runner.name)
	assert.True(t, runner.sawPNG, "image written as PNG before the run")
	assert.Equal(t, "stdout", runner.args[1])
	assert.Equal(t, []string{"-l", "rus+eng", "--tessdata-dir", "/td", "--psm", "6", "-c", "tessedit_char_whitelist=" + Whitelist}, runner.args[2:])
}

func TestTesseractEngineFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1"), stderr: "Error opening data file"}
	engine := NewTesseractEngine(EngineConfig{}, runner, nil)

	_, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)), DefaultProfiles()[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error opening data file")
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine("tesseract", EngineConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &TesseractEngine{}, eng)

	_, err = NewEngine("abacus", EngineConfig{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSplitLanguages(t *testing.T) {
	assert.Equal(t, []string{"rus", "eng"}, splitLanguages("rus+ eng+"))
	assert.Empty(t, splitLanguages(""))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf and spaces", "ХЛЕБ\t\t 45.00\r\nМОЛОКО   89.90\r\n", "ХЛЕБ 45.00\nМОЛОКО 89.90"},
		{"split decimal", "ИТОГ 12 ,50", "ИТОГ 12,50"},
		{"blank runs", "A\n\n\n\n\nB", "A\n\nB"},
		{"separator noise", "=========\nTOTAL 1.00", "TOTAL 1.00"},
		{"invalid utf8", "CAF\xff\x00E", "CAFE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
