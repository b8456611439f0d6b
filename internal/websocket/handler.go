package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
	log "github.com/sirupsen/logrus"
)

// Handler upgrades requests and serves them as hub clients.
// An empty origins list accepts any origin.
func Handler(hub *Hub, origins []string) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: origins}
	if len(origins) == 0 {
		opts.InsecureSkipVerify = true
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			log.Errorf("failed to accept websocket: %v", err)
			return
		}
		defer conn.CloseNow() //nolint:errcheck

		NewClient(hub, conn, r.RemoteAddr).Run(r.Context())
	}
}
