package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MediaPipeExtractor implements Extractor using a Python MediaPipe hand
// landmarker subprocess. It is safe for concurrent use; the underlying
// model is expensive to build, so one long-lived instance should be shared
// across requests.
type MediaPipeExtractor struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeExtractor creates a new MediaPipe extractor.
// The Python process is started lazily on first detection.
func NewMediaPipeExtractor(config Config) (*MediaPipeExtractor, error) {
	scriptPath := findLandmarkerScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("hand_landmarker_service.py not found")
	}

	return &MediaPipeExtractor{
		config: config,
	}, nil
}

// Detect analyzes an image and returns detected hands with pixel-space
// landmarks and padded bounding boxes.
func (d *MediaPipeExtractor) Detect(image gocv.Mat) ([]HandDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", image)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	// Read JSON response
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	width := image.Cols()
	height := image.Rows()

	result := make([]HandDetection, len(response.Hands))
	for i, h := range response.Hands {
		result[i] = h.toHandDetection(width, height)
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeExtractor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeExtractor) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findLandmarkerScript()
	if scriptPath == "" {
		return fmt.Errorf("hand_landmarker_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start landmarker service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()

	return nil
}

func (d *MediaPipeExtractor) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeExtractor) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(30*time.Second, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findLandmarkerScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/hand_landmarker_service.py",
		"../scripts/hand_landmarker_service.py",
		filepath.Join(execDir, "scripts/hand_landmarker_service.py"),
		filepath.Join(os.Getenv("HOME"), ".smartsign/scripts/hand_landmarker_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".smartsign/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service. Point
// coordinates are normalized to [0,1] image-relative values.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// toHandDetection denormalizes the landmark coordinates into pixel space
// and derives the padded bounding box.
func (h jsonHand) toHandDetection(width, height int) HandDetection {
	det := HandDetection{
		Hand:       h.Handedness,
		Confidence: h.Score,
	}

	w := float64(width)
	hgt := float64(height)
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		det.Landmarks[i] = Landmark{
			X:          h.Points[i].X * w,
			Y:          h.Points[i].Y * hgt,
			Z:          h.Points[i].Z * w, // depth scaled to pixels
			Visibility: h.Points[i].Visibility,
		}
	}

	det.Box = BoxFromLandmarks(det.Landmarks, width, height)

	return det
}
