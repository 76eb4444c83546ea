package reload

import (
	_ "embed"
	"strconv"
	"strings"
	"time"
)

// ReconnectDelay is the fixed wait before the client dials again after its
// socket closes.
const ReconnectDelay = time.Second

//go:embed client.js
var clientTemplate string

// ClientScript returns the reload client bound to wsURL.
func ClientScript(wsURL string) string {
	return strings.NewReplacer(
		"__WS__", wsURL,
		"__DELAY__", strconv.FormatInt(ReconnectDelay.Milliseconds(), 10),
	).Replace(clientTemplate)
}
