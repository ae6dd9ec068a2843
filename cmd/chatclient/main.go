package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/korylprince/dental-receptionist/chatbot"
	"github.com/korylprince/dental-receptionist/widget"
)

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dental-receptionist", "session")
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Server URL (http/https)")
	lang := flag.String("lang", "en", "Language for voice input and speech output")
	mute := flag.Bool("mute", false, "Start with speech output muted")
	speak := flag.String("speak", "", "Text-to-speech command; the reply text is passed as the last argument (e.g. espeak-ng)")
	sessionFile := flag.String("session-file", defaultSessionFile(), "File to keep the session ID in; empty to start a new session every run")
	debug := flag.Bool("debug", false, "Log diagnostics to stderr")
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *debug {
		logger = log.New(os.Stderr, "chatclient: ", log.LstdFlags)
	}

	var sessions chatbot.SessionStore = &chatbot.MemorySessionStore{}
	if *sessionFile != "" {
		sessions = &chatbot.FileSessionStore{Path: *sessionFile}
	}

	var speaker *execSpeaker
	if *speak != "" {
		speaker = newExecSpeaker(*speak, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	device := &fileDevice{}
	r := newRenderer(os.Stdout)

	cfg := widget.Config{
		Backend:  chatbot.NewClient(*server),
		Sessions: sessions,
		Device:   device,
		Language: *lang,
		Muted:    *mute,
		OnUpdate: r.update,
		OnStatus: r.status,
		OnNotice: r.notice,
		Logger:   logger,
	}
	if speaker != nil {
		cfg.Speaker = speaker
	}

	surface, err := widget.Mount(ctx, cfg)
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Could not connect to %s: %v", *server, err)))
		os.Exit(1)
	}
	defer surface.Unmount()

	r.greet(surface.Controller().Messages())

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("\nYou: "))
		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"), strings.EqualFold(input, "quit"):
			fmt.Println("Goodbye!")
			return
		case input == "/mute":
			if surface.Output().ToggleMuted() {
				fmt.Println(dimStyle.Render("Speech muted"))
			} else {
				fmt.Println(dimStyle.Render("Speech on"))
			}
			continue
		case strings.HasPrefix(input, "/voice"):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/voice"))
			if path == "" {
				fmt.Println(errorStyle.Render("Usage: /voice <audio file>"))
				continue
			}
			device.path = path
			if err = surface.StartVoice(ctx); err != nil {
				if !errors.Is(err, widget.ErrUnmounted) {
					logger.Printf("Could not start recording: %v", err)
				}
				continue
			}
			if err = surface.StopVoice(ctx); err != nil {
				logger.Printf("Could not stop recording: %v", err)
			}
			continue
		}

		surface.Submit(ctx, input)
	}
}
