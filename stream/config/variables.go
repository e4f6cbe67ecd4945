/*
NAME
  variables.go

DESCRIPTION
  variables.go contains a list of structs that provide a variable Name,
  type in a string format, a function for updating the variable in the
  Config struct from a string, and a validation function to check the
  validity of the corresponding field value in the Config.

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

// Config map keys.
const (
	KeyInput            = "Input"
	KeyOutput           = "Output"
	KeyInputPath        = "InputPath"
	KeyOutputPath       = "OutputPath"
	KeyLoop             = "Loop"
	KeyFrameWidth       = "FrameWidth"
	KeyFrameHeight      = "FrameHeight"
	KeyHasAlpha         = "HasAlpha"
	KeyMaxError         = "MaxError"
	KeyMinSize          = "MinSize"
	KeyMaxDepth         = "MaxDepth"
	KeyLazyness         = "Lazyness"
	KeyCacheSize        = "CacheSize"
	KeyKeyFrameInterval = "KeyFrameInterval"
	KeyUseTransform     = "UseTransform"
	KeyLogging          = "logging"
	KeySuppress         = "Suppress"
)

const (
	typeInt    = "int"
	typeBool   = "bool"
	typeString = "string"
)

// Variables describes every configurable field of Config: its name (as
// used in a configuration map), its type, how to parse and apply a
// string value to a Config, and how to validate/default it.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(c *Config, v string)
	Validate func(c *Config)
}{
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyFrameWidth,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.FrameWidth = parseInt(KeyFrameWidth, v, c) },
		Validate: func(c *Config) {
			if c.FrameWidth <= 0 {
				c.LogInvalidField(KeyFrameWidth, 1)
				c.FrameWidth = 1
			}
		},
	},
	{
		Name:   KeyFrameHeight,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.FrameHeight = parseInt(KeyFrameHeight, v, c) },
		Validate: func(c *Config) {
			if c.FrameHeight <= 0 {
				c.LogInvalidField(KeyFrameHeight, 1)
				c.FrameHeight = 1
			}
		},
	},
	{
		Name:   KeyHasAlpha,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.HasAlpha = parseBool(KeyHasAlpha, v, c) },
	},
	{
		Name:   KeyMaxError,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.MaxError = parseInt(KeyMaxError, v, c) },
		Validate: func(c *Config) {
			if c.MaxError < 0 {
				c.LogInvalidField(KeyMaxError, 0)
				c.MaxError = 0
			}
		},
	},
	{
		Name:   KeyMinSize,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.MinSize = parseInt(KeyMinSize, v, c) },
		Validate: func(c *Config) {
			if c.MinSize <= 0 || c.MinSize&(c.MinSize-1) != 0 {
				c.LogInvalidField(KeyMinSize, 1)
				c.MinSize = 1
			}
		},
	},
	{
		Name:   KeyMaxDepth,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.MaxDepth = parseInt(KeyMaxDepth, v, c) },
		Validate: func(c *Config) {
			if c.MaxDepth < -1 {
				c.LogInvalidField(KeyMaxDepth, -1)
				c.MaxDepth = -1
			}
		},
	},
	{
		Name:   KeyLazyness,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Lazyness = parseInt(KeyLazyness, v, c) },
		Validate: func(c *Config) {
			if c.Lazyness < 0 || c.Lazyness > 7 {
				c.LogInvalidField(KeyLazyness, 0)
				c.Lazyness = 0
			}
		},
	},
	{
		Name:   KeyCacheSize,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.CacheSize = parseInt(KeyCacheSize, v, c) },
		Validate: func(c *Config) {
			if c.CacheSize < 0 {
				c.LogInvalidField(KeyCacheSize, 0)
				c.CacheSize = 0
			}
		},
	},
	{
		Name:   KeyKeyFrameInterval,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.KeyFrameInterval = parseInt(KeyKeyFrameInterval, v, c) },
		Validate: func(c *Config) {
			if c.KeyFrameInterval <= 0 {
				c.LogInvalidField(KeyKeyFrameInterval, 1)
				c.KeyFrameInterval = 1
			}
		},
	},
	{
		Name:   KeyUseTransform,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.UseTransform = parseBool(KeyUseTransform, v, c) },
	},
	{
		Name:   KeyLogging,
		Type:   typeString,
		Update: func(c *Config, v string) { c.Logging = v },
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
}
