package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/jeebie-runner/jeebie/display"
)

// SaveFramePNGToDir saves an RGBA frame as PNG with timestamp to a specific
// directory. An empty directory means the working directory. Returns the path
// of the written file.
func SaveFramePNGToDir(frame []byte, baseName, directory string) (string, error) {
	if len(frame) != display.FrameSize {
		return "", fmt.Errorf("unexpected frame size %d, want %d", len(frame), display.FrameSize)
	}

	img := image.NewRGBA(image.Rect(0, 0, display.Width, display.Height))
	copy(img.Pix, frame)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Debug("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", display.Width, display.Height), "format", "PNG")
	return filePath, nil
}
