package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var level = LevelInfo

func SetLevel(l Level) {
	level = l
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func Debug(ctx context.Context, msg string, fields ...interface{}) {
	if level > LevelDebug {
		return
	}
	log.Printf("[DEBUG] %s%s", msg, formatFields(fields...))
}

func Info(ctx context.Context, msg string, fields ...interface{}) {
	if level > LevelInfo {
		return
	}
	log.Printf("[INFO] %s%s", msg, formatFields(fields...))
}

func Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	if err != nil {
		log.Printf("[ERROR] %s: %v%s", msg, err, formatFields(fields...))
		return
	}
	log.Printf("[ERROR] %s%s", msg, formatFields(fields...))
}

// formatFields renders alternating key/value pairs as " k=v k=v".
func formatFields(fields ...interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	return b.String()
}
