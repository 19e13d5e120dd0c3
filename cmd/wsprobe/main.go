// Command wsprobe connects to the notification socket and prints every event
// it receives. It is a debugging aid for the realtime feed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	addr := flag.String("addr", "localhost:8375", "server host:port")
	token := flag.String("token", os.Getenv("POSTBOARD_TOKEN"), "JWT access token (default $POSTBOARD_TOKEN)")
	secure := flag.Bool("tls", false, "use wss://")
	flag.Parse()

	if *token == "" {
		log.Fatal("a token is required: pass -token or set POSTBOARD_TOKEN")
	}

	scheme := "ws"
	if *secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: *addr, Path: "/ws", RawQuery: url.Values{"token": {*token}}.Encode()}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("connect %s: %v (HTTP %d)", *addr, err, resp.StatusCode)
		}
		log.Fatalf("connect %s: %v", *addr, err)
	}
	defer func() { _ = conn.Close() }()
	log.Printf("connected to %s://%s/ws, waiting for events", scheme, *addr)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			var ev event
			if err := json.Unmarshal(raw, &ev); err != nil {
				fmt.Printf("%s  (unparsed) %s\n", time.Now().Format(time.TimeOnly), raw)
				continue
			}
			fmt.Printf("%s  %-16s %s\n", time.Now().Format(time.TimeOnly), ev.Type, ev.Payload)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
