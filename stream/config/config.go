/*
NAME
  config.go

DESCRIPTION
  Package config contains the configuration settings for a qtc stream
  encoder/decoder.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"strconv"

	"github.com/ausocean/utils/logging"
)

// Enums to define inputs and outputs.
const (
	NothingDefined = iota

	// Inputs.
	InputFile
	InputManual

	// Outputs.
	OutputFile
)

// Config provides the parameters relevant to a qtc stream Encoder or
// Decoder. Default values for these fields are applied by Validate, as
// defined per field in Variables (variables.go).
type Config struct {
	Input  int // One of the Input* enums.
	Output int // One of the Output* enums.

	InputPath  string // Path to a raw-pixel input file, used by InputFile.
	OutputPath string // Path to write a qticontainer stream to, used by OutputFile.
	Loop       bool   // Whether an InputFile source should loop on EOF.

	FrameWidth  int // Frame width in pixels.
	FrameHeight int // Frame height in pixels.
	HasAlpha    bool

	// Quadtree codec parameters; see codec/qtc.Codec.
	MaxError int
	MinSize  int
	MaxDepth int
	Lazyness int

	// CacheSize is the number of tiles the shared tile cache can hold; 0
	// disables the tile cache.
	CacheSize int

	// KeyFrameInterval is the number of frames between tile-cache resets
	// and reference-image refreshes; every KeyFrameInterval-th frame
	// (and the first) is coded without a reference image.
	KeyFrameInterval int

	// UseTransform selects whether frames are run through the reversible
	// RGB<->YCoCg colorspace transform before/after quadtree coding.
	UseTransform bool

	Logging  string // Logging verbosity setting; cmd/qtc sets its level from -verbose instead.
	Suppress bool   // Suppress noisy logging output.

	Logger logging.Logger
}

// Validate checks for any errors in the config fields and defaults
// settings if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their
// corresponding values, parses the string values and converts into the
// correct type, and sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// LogInvalidField logs that a field was bad or unset and that def is
// being used in its place.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger != nil {
		c.Logger.Info(name+" bad or unset, defaulting", name, def)
	}
}

func parseInt(name, v string, c *Config) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		c.LogInvalidField(name, 0)
		return 0
	}
	return n
}

func parseBool(name, v string, c *Config) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.LogInvalidField(name, false)
		return false
	}
	return b
}
