package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/korylprince/dental-receptionist/api"
	"github.com/korylprince/dental-receptionist/httpapi"
)

func main() {
	admin, err := api.NewAdmin(config.AdminUser, config.AdminPassword)
	if err != nil {
		log.Fatalln("Could not create admin account:", err)
	}

	store := api.NewMemoryStore(admin)
	if config.Seed {
		if err = store.Seed(context.Background(), time.Now()); err != nil {
			log.Fatalln("Could not seed appointments:", err)
		}
	}

	s := httpapi.NewMemorySessionStore(time.Minute * time.Duration(config.SessionDuration))
	defer s.Close()

	r := httpapi.NewRouter(os.Stdout, s, store, &httpapi.ChatConfig{
		Responder:   httpapi.NewScriptedResponder(store, config.ChunkRate),
		Transcriber: httpapi.StaticTranscriber{Text: config.Transcript},
	})

	var h http.Handler = r
	if config.Prefix != "" {
		h = http.StripPrefix(config.Prefix, r)
	}
	chain := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CompressHandler(h))

	log.Println("Listening on:", config.ListenAddr)
	log.Println(http.ListenAndServe(config.ListenAddr, chain))
}
