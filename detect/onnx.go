package detect

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/automoto/lookout/logging"
	"github.com/automoto/lookout/tracking"
	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures a YOLO-style face model.
type ONNXConfig struct {
	ModelPath   string
	RuntimeLib  string // onnxruntime shared library; empty keeps the library default
	InputSize   int    // square model input edge in pixels
	InputName   string
	OutputName  string
	Predictions int // 0 derives the count from InputSize
	Normalized  bool
	Confidence  float32
	IoU         float32
	Grayscale   bool // feed luminance replicated across the three planes
	Threads     int  // intra-op threads; 0 uses every CPU
}

func (c ONNXConfig) withDefaults() ONNXConfig {
	if c.InputSize == 0 {
		c.InputSize = 640
	}
	if c.InputName == "" {
		c.InputName = "images"
	}
	if c.OutputName == "" {
		c.OutputName = "output0"
	}
	if c.Predictions == 0 {
		c.Predictions = AnchorCount(c.InputSize)
	}
	if c.Confidence == 0 {
		c.Confidence = 0.5
	}
	if c.IoU == 0 {
		c.IoU = 0.45
	}
	if c.Threads == 0 {
		c.Threads = runtime.NumCPU()
	}
	return c
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(lib string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		return ort.DestroyEnvironment()
	}
	return nil
}

// ONNX runs a face model through onnxruntime. Detect must not be called
// concurrently; the producer goroutine is its only caller.
type ONNX struct {
	cfg     ONNXConfig
	layout  Layout
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	buffer  []float32
}

// NewONNX loads the model and allocates its tensors.
func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	cfg = cfg.withDefaults()
	if cfg.ModelPath == "" {
		return nil, errors.New("onnx detector needs a model path")
	}

	if err := acquireEnvironment(cfg.RuntimeLib); err != nil {
		return nil, err
	}

	d, err := newSession(cfg)
	if err != nil {
		_ = releaseEnvironment()
		return nil, err
	}

	logging.WithComponent("detect").WithFields(logging.Fields{
		"model":       cfg.ModelPath,
		"input":       cfg.InputSize,
		"predictions": cfg.Predictions,
	}).Info("[detect] onnx model loaded")
	return d, nil
}

func newSession(cfg ONNXConfig) (*ONNX, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(cfg.InputSize), int64(cfg.InputSize)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 5, int64(cfg.Predictions)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ONNX{
		cfg: cfg,
		layout: Layout{
			Predictions: cfg.Predictions,
			InputWidth:  cfg.InputSize,
			InputHeight: cfg.InputSize,
			Normalized:  cfg.Normalized,
		},
		session: session,
		input:   input,
		output:  output,
		buffer:  make([]float32, 3*cfg.InputSize*cfg.InputSize),
	}, nil
}

func (d *ONNX) Detect(frame tracking.Frame) ([]tracking.FaceRegion, error) {
	if frame.Image == nil {
		return nil, errors.New("onnx detector needs frame pixels")
	}

	Preprocess(frame.Image, d.cfg.InputSize, d.cfg.Grayscale, d.buffer)
	copy(d.input.GetData(), d.buffer)

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	dets, err := DecodePredictions(d.output.GetData(), d.layout, frame.Width, frame.Height, d.cfg.Confidence)
	if err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return Regions(SuppressOverlaps(dets, d.cfg.IoU)), nil
}

func (d *ONNX) Close() error {
	if d.session == nil {
		return nil
	}
	d.session.Destroy()
	d.session = nil
	if d.input != nil {
		d.input.Destroy()
		d.input = nil
	}
	if d.output != nil {
		d.output.Destroy()
		d.output = nil
	}
	return releaseEnvironment()
}

// Preprocess resizes img to size x size and writes it into dst as three
// CHW float planes scaled to [0,1]. dst must hold 3*size*size values.
func Preprocess(img image.Image, size int, gray bool, dst []float32) {
	var resized *image.NRGBA
	if gray {
		resized = imaging.Grayscale(imaging.Resize(img, size, size, imaging.Linear))
	} else {
		resized = imaging.Resize(img, size, size, imaging.Linear)
	}

	plane := size * size
	for y := 0; y < size; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < size; x++ {
			p := row[x*4 : x*4+3]
			i := y*size + x
			dst[i] = float32(p[0]) / 255
			dst[plane+i] = float32(p[1]) / 255
			dst[2*plane+i] = float32(p[2]) / 255
		}
	}
}
