package telegram

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Webhook receives updates pushed by the Bot API, the alternative to long
// polling for deployments with a public base URL.
type Webhook struct {
	client  *Client
	handler *UpdateHandler
	secret  string
}

func NewWebhook(client *Client, handler *UpdateHandler, secret string) *Webhook {
	return &Webhook{client: client, handler: handler, secret: secret}
}

func (w *Webhook) Register(baseURL string) error {
	url := baseURL + "/webhook/telegram"
	if err := w.client.SetWebhook(url, w.secret); err != nil {
		return err
	}
	log.Printf("[webhook] registered at %s", url)
	return nil
}

func (w *Webhook) Handle(c *gin.Context) {
	if w.secret != "" {
		if c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != w.secret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go w.handler.Handle(upd)

	c.Status(http.StatusOK)
}
