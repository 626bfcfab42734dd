// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/forgelabs/payloadd/consts"
)

const (
	logMaxSizeMB = 8
	logMaxAge    = 7 // days
	logMaxFiles  = 4
)

// newLogger writes colored output to stdout and, when [cfg.LogDir] is
// set, JSON to a size-rotated file.
func newLogger(cfg Config) (logging.Logger, error) {
	level, err := logging.ToLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	consoleCore := logging.NewWrappedCore(level, os.Stdout, logging.Colors.ConsoleEncoder())
	if cfg.LogDir == "" {
		return logging.NewLogger(consts.Name, consoleCore), nil
	}

	rw := &lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, consts.Name+".log"),
		MaxSize:    logMaxSizeMB,
		MaxAge:     logMaxAge,
		MaxBackups: logMaxFiles,
		Compress:   true,
	}
	fileCore := logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(consts.Name, consoleCore, fileCore), nil
}
