/*
NAME
  stream.go

DESCRIPTION
  Package stream provides Encoder and Decoder, which drive the quadtree
  codec across a sequence of frames from a device.FrameSource through to
  a qticontainer stream: owning the shared tile cache and reference-image
  lifecycle, and deciding the key-frame interval at which both are reset.

  Grounded on revid.Revid's role as the top-level owner of pipeline state
  (config, input device, running/wg/err bookkeeping) and
  revid/pipeline.go's frame-by-frame driving loop.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stream

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/ausocean/qtc/codec/qtc"
	"github.com/ausocean/qtc/container/qticontainer"
	"github.com/ausocean/qtc/device"
	"github.com/ausocean/qtc/stream/config"
)

// Encoder drives the quadtree codec over a sequence of frames read from a
// device.FrameSource, writing a qticontainer stream to an io.Writer.
// Every KeyFrameInterval-th frame (and the first) is coded without
// reference to the previous frame and resets the shared tile cache, so a
// decoder can start mid-stream at a key frame.
type Encoder struct {
	cfg    config.Config
	src    device.FrameSource
	dst    *qticontainer.Encoder
	codec  *qtc.Codec
	cache  *qtc.TileCache
	prev   *qtc.Image
	frame  int
	mu     sync.Mutex
	closed bool
}

// NewEncoder returns a new Encoder reading frames from src and writing a
// qticontainer stream to dst, per cfg.
func NewEncoder(cfg config.Config, src device.FrameSource, dst io.Writer) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "stream: invalid config")
	}

	var cache *qtc.TileCache
	if cfg.CacheSize > 0 {
		var err error
		cache, err = qtc.NewTileCache(cfg.CacheSize, cfg.MinSize)
		if err != nil {
			return nil, errors.Wrap(err, "stream: tile cache")
		}
	}

	codec, err := qtc.NewCodec(cfg.MaxError, cfg.MinSize, cfg.MaxDepth, cfg.Lazyness, cache)
	if err != nil {
		return nil, errors.Wrap(err, "stream: codec")
	}

	return &Encoder{
		cfg:   cfg,
		src:   src,
		dst:   qticontainer.NewEncoder(dst),
		codec: codec,
		cache: cache,
	}, nil
}

// EncodeFrame reads one frame from the Encoder's source, quadtree-codes
// it (optionally against the previous frame, and optionally through the
// reversible colorspace transform), and writes the result to the
// Encoder's destination.
func (e *Encoder) EncodeFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("stream: encoder closed")
	}

	im, err := qtc.NewImage(e.cfg.FrameWidth, e.cfg.FrameHeight, e.cfg.HasAlpha)
	if err != nil {
		return err
	}
	if err := e.src.ReadFrame(im); err != nil {
		return errors.Wrap(err, "stream: read frame")
	}
	if e.cfg.UseTransform {
		im.Forward()
	}

	isKeyFrame := e.frame%e.cfg.KeyFrameInterval == 0
	var ref *qtc.Image
	if !isKeyFrame {
		ref = e.prev
	} else if e.cache != nil {
		e.cache.Reset()
	}

	q, err := e.codec.Compress(im, ref)
	if err != nil {
		return errors.Wrap(err, "stream: compress")
	}
	// The codec itself is oblivious to the colorspace transform; stamp the
	// flag onto the QTI here so the container is self-describing and a
	// decoder never needs this passed out-of-band (see Decoder.DecodeFrame).
	q.Transform = e.cfg.UseTransform
	if _, err := e.dst.Write(q); err != nil {
		return errors.Wrap(err, "stream: write")
	}

	// e.prev must be what the decoder will actually reconstruct, not the
	// source frame: with MaxError>0 or Lazyness>0 a leaf's coded content is
	// a lossy/masked approximation of im, so decoding q against ref here
	// mirrors Decoder.DecodeFrame's own reconstruction exactly, keeping the
	// next delta's baseline identical on both sides instead of drifting.
	recon, err := e.codec.Decompress(q, ref)
	if err != nil {
		return errors.Wrap(err, "stream: reconstruct reference")
	}
	e.prev = recon
	e.frame++
	return nil
}

// Close marks the Encoder closed; subsequent EncodeFrame calls fail.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Decoder drives the quadtree codec's decompressor over a qticontainer
// stream read from an io.Reader, reconstructing each frame in turn and
// mirroring the Encoder's shared tile-cache and reference-image
// lifecycle exactly.
type Decoder struct {
	cfg   config.Config
	src   *qticontainer.Decoder
	codec *qtc.Codec
	cache *qtc.TileCache
	prev  *qtc.Image
	frame int
}

// NewDecoder returns a new Decoder reading a qticontainer stream from
// src, per cfg. cfg's codec parameters (MinSize, MaxDepth, Lazyness,
// CacheSize, KeyFrameInterval) must match the Encoder that produced the
// stream.
func NewDecoder(cfg config.Config, src io.Reader) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "stream: invalid config")
	}

	var cache *qtc.TileCache
	if cfg.CacheSize > 0 {
		var err error
		cache, err = qtc.NewTileCache(cfg.CacheSize, cfg.MinSize)
		if err != nil {
			return nil, errors.Wrap(err, "stream: tile cache")
		}
	}

	codec, err := qtc.NewCodec(0, cfg.MinSize, cfg.MaxDepth, cfg.Lazyness, cache)
	if err != nil {
		return nil, errors.Wrap(err, "stream: codec")
	}

	return &Decoder{
		cfg:   cfg,
		src:   qticontainer.NewDecoder(src),
		codec: codec,
		cache: cache,
	}, nil
}

// DecodeFrame reads and reconstructs the next frame of the Decoder's
// stream. It returns io.EOF when the stream is exhausted.
func (d *Decoder) DecodeFrame() (*qtc.Image, error) {
	q, err := d.src.Read()
	if err != nil {
		return nil, err
	}

	isKeyFrame := d.frame%d.cfg.KeyFrameInterval == 0
	if isKeyFrame && d.cache != nil {
		d.cache.Reset()
	}

	var ref *qtc.Image
	if !isKeyFrame {
		ref = d.prev
	}

	im, err := d.codec.Decompress(q, ref)
	if err != nil {
		return nil, errors.Wrap(err, "stream: decompress")
	}

	// d.prev must stay in the same colorspace Compress/Decompress
	// operate in (post-Forward, if the stream was transformed) so that
	// it lines up with the next frame's delta; the RGB conversion below
	// is applied to a separate clone so it doesn't disturb that
	// reference. Whether to invert is read from the QTI itself (q.Transform),
	// not d.cfg, so the decision is self-describing from the stream's own
	// framing rather than relying on the caller's out-of-band config.
	d.prev = im
	d.frame++

	out := im
	if q.Transform {
		out = im.Clone()
		out.Inverse()
	}
	return out, nil
}
