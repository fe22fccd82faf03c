package main

import (
	"context"
	"flag"
	"os"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"

	"github.com/openvocab/go-grounding/config"
	"github.com/openvocab/go-grounding/grounding"
	"github.com/openvocab/go-grounding/images"
	"github.com/openvocab/go-grounding/inference"
	"github.com/openvocab/go-grounding/postprocess"
	"github.com/openvocab/go-grounding/render"
	"github.com/openvocab/go-grounding/tokenize"
	"github.com/openvocab/go-grounding/util"
)

const (
	// DefaultNumWorkers is the worker count for the suppression pass.
	DefaultNumWorkers = 4
	// DefaultDrawLimit is how many of the top detections get drawn.
	DefaultDrawLimit = 5
)

func main() {
	var (
		configPath     string
		checkpointPath string
		device         string
		numSelect      int
		imagePath      string
		numWorkers     int
		outputDir      string
		showWindow     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to the run configuration file")
	flag.StringVar(&checkpointPath, "checkpoint", "", "Path to the ONNX checkpoint (overrides config)")
	flag.StringVar(&device, "device", "cpu", "Execution device (cpu, cuda, coreml)")
	flag.IntVar(&numSelect, "num-select", 0, "Number of top detections to select (overrides config)")
	flag.StringVar(&imagePath, "image", "", "Path to the input image")
	flag.IntVar(&numWorkers, "num-workers", DefaultNumWorkers, "Number of workers for the suppression pass")
	flag.StringVar(&outputDir, "output-dir", ".", "Directory for the annotated image")
	flag.BoolVar(&showWindow, "show-window", false, "Show the annotated image in a window")
	flag.Parse()

	log := newLogger()

	if configPath == "" || imagePath == "" {
		log.Fatal("both -config and -image are required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if checkpointPath != "" {
		cfg.Model.Path = checkpointPath
	}
	if numSelect > 0 {
		cfg.NumSelect = numSelect
	}

	backend, err := inference.ParseBackend(device)
	if err != nil {
		log.WithError(err).Fatal("selecting device")
	}

	tokenizer, err := tokenize.NewHFTokenizer(cfg.Tokenizer.Path)
	if err != nil {
		log.WithError(err).Fatal("loading tokenizer")
	}
	defer tokenizer.Close()

	// The positive map is built once per category list; any failure here
	// invalidates the whole run, so it aborts before the model loads.
	caption, err := grounding.BuildCaption(cfg.Categories)
	if err != nil {
		log.WithError(err).Fatal("building caption")
	}
	log.WithField("caption", caption.Text).Info("input text prompt")

	tokens, err := tokenizer.Tokenize(caption.Text)
	if err != nil {
		log.WithError(err).Fatal("tokenizing caption")
	}

	positiveMap, err := grounding.NewPositiveMap(caption, tokens, cfg.Model.TextWidth)
	if err != nil {
		log.WithError(err).Fatal("building positive map")
	}

	session, err := inference.NewSession(inference.SessionConfig{
		ModelPath: cfg.Model.Path,
		Backend:   backend,
		Inputs:    cfg.Model.Inputs,
		Outputs:   cfg.Model.Outputs,
	})
	if err != nil {
		log.WithError(err).Fatal("creating inference session")
	}
	defer session.Close()

	img, err := util.LoadImageFile(imagePath)
	if err != nil {
		log.WithError(err).Fatal("loading image")
	}
	bounds := img.Bounds()
	// Boxes rescale to the original image, not the resized network input.
	target := images.Size{Height: bounds.Dy(), Width: bounds.Dx()}
	log.WithFields(logrus.Fields{
		"path":   imagePath,
		"width":  target.Width,
		"height": target.Height,
	}).Info("processing image")

	input, err := inference.BuildInput(img, tokens)
	if err != nil {
		log.WithError(err).Fatal("preparing network input")
	}

	output, err := session.Infer(context.Background(), input)
	if err != nil {
		log.WithError(err).Fatal("running inference")
	}

	results, err := grounding.PostProcess(output, positiveMap, target, cfg.NumSelect)
	if err != nil {
		log.WithError(err).Fatal("postprocessing detections")
	}

	detections := results.Items(cfg.Categories)
	if cfg.NMS.Enabled {
		detections = postprocess.Apply(detections, &postprocess.NMSConfig{
			Greedy:       cfg.NMS.Greedy,
			IoUThreshold: cfg.NMS.IoUThreshold,
			ClassAware:   cfg.NMS.ClassAware,
			NumWorkers:   numWorkers,
		})
	}

	for i, det := range detections {
		if i >= DefaultDrawLimit {
			break
		}
		log.WithFields(logrus.Fields{
			"label": det.Label,
			"score": det.Score,
			"box":   det.Box.String(),
		}).Info("detection")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.WithError(err).Fatal("creating output directory")
	}
	outPath, err := render.Draw(imagePath, detections, render.Options{
		MaxBoxes:   DefaultDrawLimit,
		OutputDir:  outputDir,
		ShowWindow: showWindow,
	})
	if err != nil {
		log.WithError(err).Fatal("rendering detections")
	}
	log.WithField("path", outPath).Info("annotated image written")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&formatter.Formatter{
		TimestampFormat: "15:04:05.000",
		HideKeys:        false,
	})
	return logger
}
