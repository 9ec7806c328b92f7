package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

// MapProxies forwards the raw backend paths verbatim: the GraphQL
// endpoint (plain POST and the WebSocket subscription channel) and the
// two binary-serving paths. The gateway never interprets these protocols.
func MapProxies(app *fiber.App) {
	origin := upstream.Origin()

	app.All("/graphql", func(c *fiber.Ctx) error {
		if strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket") {
			return adaptor.HTTPHandler(newSubscriptionProxy(origin))(c)
		}
		return proxy.Do(c, origin+"/graphql")
	})

	app.Get("/objects/*", func(c *fiber.Ctx) error {
		return proxy.Do(c, origin+"/objects/"+c.Params("*"))
	})

	app.Get("/thumbnails/:id", func(c *fiber.Ctx) error {
		return proxy.Do(c, origin+"/thumbnails/"+c.Params("id"))
	})
}

// newSubscriptionProxy pumps WebSocket frames between the browser and the
// backend without touching the graphql-ws protocol inside them.
func newSubscriptionProxy(origin string) http.Handler {
	upgrader := websocket.Upgrader{
		Subprotocols: []string{"graphql-transport-ws", "graphql-ws"},
		CheckOrigin: func(r *http.Request) bool {
			public := viper.GetString("public_url")
			if len(public) == 0 {
				return true
			}
			return strings.HasPrefix(r.Header.Get("Origin"), public)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := "ws" + strings.TrimPrefix(origin, "http") + "/graphql"
		header := http.Header{}
		if protocol := r.Header.Get("Sec-WebSocket-Protocol"); len(protocol) > 0 {
			header.Set("Sec-WebSocket-Protocol", protocol)
		}

		peer, _, err := websocket.DefaultDialer.DialContext(r.Context(), endpoint, header)
		if err != nil {
			log.Warn().Err(err).Msg("An error occurred when dialing the backend subscription channel...")
			http.Error(w, "backend subscription channel is unavailable", http.StatusBadGateway)
			return
		}
		defer peer.Close()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		done := make(chan struct{}, 2)
		go pumpFrames(conn, peer, done)
		go pumpFrames(peer, conn, done)
		<-done
	})
}

func pumpFrames(dst, src *websocket.Conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		kind, frame, err := src.ReadMessage()
		if err != nil {
			_ = dst.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
		if err := dst.WriteMessage(kind, frame); err != nil {
			return
		}
	}
}
