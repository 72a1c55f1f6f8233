// Package ocr provides OCR (Optical Character Recognition) functionality using Tesseract.
// This is used to read appointment requests from uploaded images.
package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds one tesseract run.
const DefaultTimeout = 30 * time.Second

// Supported image MIME types for OCR
var SupportedMimeTypes = []string{
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/gif",
	"image/bmp",
	"image/webp",
}

// TessdataCandidates are searched when no tessdata directory is configured.
var TessdataCandidates = []string{
	"/opt/homebrew/share/tessdata",
	"/usr/local/share/tessdata",
	"/usr/share/tessdata",
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
}

// Recognizer extracts text from an image.
type Recognizer interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
	IsSupported(mimeType string) bool
}

// Config holds the OCR configuration
type Config struct {
	// TesseractPath is the path to the tesseract executable
	TesseractPath string
	// DataPath is the path to the tessdata directory (optional)
	DataPath string
	// Languages are the languages to use for OCR (e.g., "eng+hin")
	Languages string
	// Preprocess enables image cleanup before recognition
	Preprocess        bool
	PreprocessOptions PreprocessOptions
	// Timeout bounds each tesseract run, zero means no limit
	Timeout time.Duration
}

// DefaultConfig returns the default OCR configuration
func DefaultConfig() *Config {
	return &Config{
		TesseractPath:     "tesseract",
		DataPath:          "",
		Languages:         "eng",
		Preprocess:        true,
		PreprocessOptions: DefaultPreprocessOptions(),
		Timeout:           DefaultTimeout,
	}
}

// Client provides OCR functionality
type Client struct {
	config *Config
}

// NewClient creates a new OCR client
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{config: config}
}

// ExtractText extracts text from an image using Tesseract OCR
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if !c.isSupported(mimeType) {
		return "", errors.Errorf("unsupported MIME type: %s", mimeType)
	}
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}

	if c.config.Preprocess {
		cleaned, err := Preprocess(image, c.config.PreprocessOptions)
		if err != nil {
			// tesseract reads some formats the decoder does not
			slog.Debug("image preprocessing skipped", "mime_type", mimeType, "error", err)
		} else {
			image = cleaned
		}
	}

	// Create a temporary file for the image
	tmpFile, err := os.CreateTemp("", "ocr_*.png")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	tmpFile.Close()

	if err := os.WriteFile(tmpPath, image, 0600); err != nil {
		return "", errors.Wrap(err, "failed to write temp file")
	}

	// Create output file path (without extension)
	outPath := strings.TrimSuffix(tmpPath, filepath.Ext(tmpPath))

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.config.TesseractPath, c.buildArgs(tmpPath, outPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("tesseract command failed", "error", err, "stderr", stderr.String())
		return "", errors.Wrap(err, "tesseract command failed")
	}

	txtPath := outPath + ".txt"
	defer os.Remove(txtPath)

	text, err := os.ReadFile(txtPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read OCR output")
	}

	return strings.TrimSpace(string(text)), nil
}

func (c *Client) buildArgs(inPath, outPath string) []string {
	args := []string{inPath, outPath}
	if c.config.Languages != "" {
		args = append(args, "-l", c.config.Languages)
	}
	if dataPath := ResolveTessdataPath(c.config.DataPath); dataPath != "" {
		args = append(args, "--tessdata-dir", dataPath)
	}
	return args
}

// ResolveTessdataPath returns configured when it is an existing directory,
// else the first existing TessdataCandidates entry, else configured unchanged.
func ResolveTessdataPath(configured string) string {
	if configured != "" && isDir(configured) {
		return configured
	}
	for _, candidate := range TessdataCandidates {
		if isDir(candidate) {
			return candidate
		}
	}
	return configured
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsAvailable checks if Tesseract is available
func (c *Client) IsAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, c.config.TesseractPath, "--version")
	return cmd.Run() == nil
}

// GetVersion returns the Tesseract version
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.config.TesseractPath, "--version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "failed to get tesseract version")
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsSupported checks if a MIME type is supported for OCR
func (c *Client) IsSupported(mimeType string) bool {
	return c.isSupported(mimeType)
}

func (c *Client) isSupported(mimeType string) bool {
	// drop parameters such as "; charset=binary"
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)
	for _, supported := range SupportedMimeTypes {
		if strings.EqualFold(mimeType, supported) {
			return true
		}
	}
	return false
}

// Ensure Client implements Recognizer
var _ Recognizer = (*Client)(nil)
