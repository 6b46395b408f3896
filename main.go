package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"notewriter/audio"
	"notewriter/beep"
	"notewriter/config"
	"notewriter/doctor"
	"notewriter/keyboard"
	"notewriter/log"
	"notewriter/transcriber"
)

var version = "dev"

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func run() int {
	simpleFlag := flag.Bool("simple", false, "Unattended mode: open the editor and dictate until interrupted")
	configFlag := flag.String("config", "", "YAML config file (default: built-in settings)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	deviceFlag := flag.String("device", "", "Use the microphone whose name contains this text")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	providerFlag := flag.String("provider", "", "Transcription provider: google, groq, openai or deepgram")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven): notewriter -test <wav-file>")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("notewriter %s\n", version)
		return 0
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *deviceFlag != "" {
		cfg.Listen.Device = *deviceFlag
	}
	if *providerFlag != "" {
		cfg.Transcriber.Provider = *providerFlag
	}
	if *langFlag != "" {
		cfg.Transcriber.Language = *langFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !cfg.Beep {
		beep.Disable()
	}

	if *doctorFlag {
		return doctor.Run(cfg)
	}

	t, err := transcriber.New(cfg.Transcriber.Provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: notewriter -test <wav-file>")
			return 1
		}
		return runTestMode(cfg, t, args[0])
	}

	if *simpleFlag {
		log.SetConsole(os.Stderr)
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		return 1
	}
	defer actx.Close()

	if *setupFlag && *deviceFlag == "" {
		dev, err := audio.SelectDevice(actx, cfg.Listen.Device)
		if errors.Is(err, audio.ErrSelectionCancelled) {
			return 130
		}
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		} else if dev != nil {
			cfg.Listen.Device = dev.Name
		}
	}

	typer, err := keyboard.New(cfg.Typing.Backend)
	if err != nil {
		log.Errorf("typing backend init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if cfg.Typing.Backend == "uinput" {
			fmt.Fprintln(os.Stderr, "Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
		return 1
	}

	a, err := newApp(context.Background(), cfg, actx, t, typer)
	if err != nil {
		log.Errorf("startup error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	mode := "panel"
	if *simpleFlag {
		mode = "simple"
	}
	log.SessionStart(t.Name(), cfg.Editor.Name, mode)
	defer func() { log.SessionEnd(a.pipeline.Typed()) }()

	if *simpleFlag {
		return runSimple(a, os.Stdout)
	}
	return runPanel(a)
}
