/*
DESCRIPTION
  qtc is a command-line tool for compressing and decompressing raw
  32-bit BGRX pixel frames to and from a qticontainer stream using the
  quadtree codec.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements the qtc command-line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/qtc/device/file"
	"github.com/ausocean/qtc/stream"
	"github.com/ausocean/qtc/stream/config"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "qtc.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

const pkg = "qtc: "

func main() {
	showVersion := flag.Bool("version", false, "show version")
	decode := flag.Bool("decode", false, "decode a qticontainer stream instead of encoding")
	in := flag.String("in", "", "input path: raw BGRX frames to encode, or a qticontainer stream to decode")
	out := flag.String("out", "", "output path: a qticontainer stream when encoding, or raw BGRX frames when decoding")
	width := flag.Int("width", 0, "frame width in pixels")
	height := flag.Int("height", 0, "frame height in pixels")
	loop := flag.Bool("loop", false, "loop the input file on EOF (encode only)")
	maxError := flag.Int("maxerror", 0, "maximum per-channel error tolerated by a leaf node")
	minSize := flag.Int("minsize", 1, "smallest quadtree node edge length, a power of two")
	maxDepth := flag.Int("maxdepth", -1, "maximum quadtree recursion depth, -1 for unbounded")
	lazyness := flag.Int("lazyness", 0, "number of low bits masked from each colour channel, 0-7")
	cacheSize := flag.Int("cachesize", 0, "tile cache capacity in tiles, 0 disables the tile cache")
	keyFrameInterval := flag.Int("keyframeinterval", 1, "frames between tile-cache resets and reference refreshes")
	useTransform := flag.Bool("transform", false, "apply the reversible RGB<->YCoCg colourspace transform")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	level := logging.Info
	if *verbose {
		level = logging.Debug
	}
	log := logging.New(level, io.MultiWriter(fileLog, os.Stderr), false)
	log.Info("starting qtc", "version", version)

	if *in == "" || *out == "" {
		log.Fatal(pkg + "both -in and -out must be provided")
	}
	if *width <= 0 || *height <= 0 {
		log.Fatal(pkg + "-width and -height must be positive")
	}

	cfg := config.Config{
		InputPath:        *in,
		OutputPath:       *out,
		Loop:             *loop,
		FrameWidth:       *width,
		FrameHeight:      *height,
		MaxError:         *maxError,
		MinSize:          *minSize,
		MaxDepth:         *maxDepth,
		Lazyness:         *lazyness,
		CacheSize:        *cacheSize,
		KeyFrameInterval: *keyFrameInterval,
		UseTransform:     *useTransform,
		Logger:           log,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(pkg+"invalid configuration", "error", err.Error())
	}

	var err error
	if *decode {
		err = runDecode(cfg, log)
	} else {
		err = runEncode(cfg, log)
	}
	if err != nil {
		log.Fatal(pkg+"run failed", "error", err.Error())
	}
	log.Info("qtc finished")
}

// runEncode reads raw BGRX frames from cfg.InputPath and writes a
// qticontainer stream to cfg.OutputPath.
func runEncode(cfg config.Config, log logging.Logger) error {
	src := file.NewWith(log, cfg.InputPath, cfg.FrameWidth, cfg.FrameHeight, cfg.Loop)
	if err := src.Start(); err != nil {
		return fmt.Errorf("could not start input file: %w", err)
	}
	defer src.Stop()

	dst, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer dst.Close()

	enc, err := stream.NewEncoder(cfg, src, dst)
	if err != nil {
		return fmt.Errorf("could not create encoder: %w", err)
	}

	n := 0
	for {
		err := enc.EncodeFrame()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", n, err)
		}
		n++
	}
	log.Info("encoded frames", "count", n)
	return enc.Close()
}

// runDecode reads a qticontainer stream from cfg.InputPath and writes
// raw BGRX frames to cfg.OutputPath.
func runDecode(cfg config.Config, log logging.Logger) error {
	src, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("could not open input file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer dst.Close()

	dec, err := stream.NewDecoder(cfg, src)
	if err != nil {
		return fmt.Errorf("could not create decoder: %w", err)
	}

	buf := make([]byte, cfg.FrameWidth*cfg.FrameHeight*4)
	n := 0
	for {
		im, err := dec.DecodeFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", n, err)
		}
		for i, p := range im.Pix {
			o := i * 4
			buf[o], buf[o+1], buf[o+2], buf[o+3] = p.Z, p.Y, p.X, p.A
		}
		if _, err := dst.Write(buf); err != nil {
			return fmt.Errorf("write frame %d: %w", n, err)
		}
		n++
	}
	log.Info("decoded frames", "count", n)
	return nil
}
