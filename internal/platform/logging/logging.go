// Package logging は logrus ロガーの構築を担います。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options はロガーの出力設定です。
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New は Options に従って logrus.Logger を構築します。
func New(opts Options) (*logrus.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("logging: unsupported format %q", opts.Format)
	}

	return logger, nil
}

// ParseLevel はログレベル名を解釈します。空文字は info、silent は panic 相当です。
func ParseLevel(raw string) (logrus.Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return logrus.InfoLevel, nil
	case "silent":
		return logrus.PanicLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "logging: invalid level %q", raw)
	}
	return level, nil
}

// Component はコンポーネント名を付けたエントリを返します。
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
