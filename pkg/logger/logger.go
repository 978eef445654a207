package logger

import (
	"log"
	"os"
)

var debugEnabled bool

// Initialize logging flags (called once from main)
func Init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	debugEnabled = os.Getenv("LOG_DEBUG") == "true"
}

func Infof(format string, v ...any) {
	log.Printf("[INFO] "+format, v...)
}

func Warnf(format string, v ...any) {
	log.Printf("[WARN] "+format, v...)
}

func Errorf(format string, v ...any) {
	log.Printf("[ERROR] "+format, v...)
}

// Debugf is silenced unless LOG_DEBUG=true; batch runs produce a per-send
// debug line and that is too chatty for production logs.
func Debugf(format string, v ...any) {
	if !debugEnabled {
		return
	}
	log.Printf("[DEBUG] "+format, v...)
}

func Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}
