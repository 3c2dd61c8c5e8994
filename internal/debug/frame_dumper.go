package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hwtests/internal/model"
)

// FrameDumper writes readback buffers as hex text.
type FrameDumper struct {
	outputDir   string
	dumpEnabled bool
	dumpCount   int
	maxDumps    int
	pixelFilter func(x, y int, s model.Sample) bool
}

// NewFrameDumper creates a disabled frame dumper.
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{
		outputDir: outputDir,
		maxDumps:  10,
	}
}

// Enable activates frame dumping.
func (fd *FrameDumper) Enable() {
	fd.dumpEnabled = true
}

// Disable deactivates frame dumping.
func (fd *FrameDumper) Disable() {
	fd.dumpEnabled = false
}

// SetMaxDumps sets the maximum number of buffers to dump.
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetPixelFilter restricts dumps to matching pixels.
func (fd *FrameDumper) SetPixelFilter(filter func(x, y int, s model.Sample) bool) {
	fd.pixelFilter = filter
}

// DumpBuffer writes a width x height buffer of 0xAARRGGBB values. It
// returns the path written, or "" when dumping is off or the limit is hit.
func (fd *FrameDumper) DumpBuffer(name string, width, height int, pixels []model.Sample) (string, error) {
	if !fd.dumpEnabled || fd.dumpCount >= fd.maxDumps {
		return "", nil
	}
	if len(pixels) < width*height {
		return "", fmt.Errorf("buffer %s holds %d pixels, need %dx%d", name, len(pixels), width, height)
	}
	if err := os.MkdirAll(fd.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("%s_%03d.txt", name, fd.dumpCount))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create frame dump file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Readback Buffer Dump\n")
	fmt.Fprintf(file, "Name: %s\n", name)
	fmt.Fprintf(file, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "Dimensions: %dx%d\n", width, height)
	fmt.Fprintf(file, "===================\n\n")

	for y := 0; y < height; y++ {
		fmt.Fprintf(file, "Line %03d:", y)
		for x := 0; x < width; x++ {
			s := pixels[y*width+x]
			if fd.pixelFilter != nil && !fd.pixelFilter(x, y, s) {
				continue
			}
			if x%16 == 0 && x > 0 {
				fmt.Fprintf(file, "\n         ")
			}
			fmt.Fprintf(file, " %08X", s.Pack())
		}
		fmt.Fprintf(file, "\n")
	}

	fd.dumpCount++
	return path, nil
}

// DumpCount is the number of buffers written.
func (fd *FrameDumper) DumpCount() int {
	return fd.dumpCount
}
