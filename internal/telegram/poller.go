package telegram

import (
	"log"
	"time"
)

// Poller drives the bot through long polling, the default transport when no
// webhook base URL is configured.
type Poller struct {
	client  *Client
	handler *UpdateHandler
	timeout int // getUpdates long-poll timeout, seconds

	stopCh chan struct{}
}

func NewPoller(client *Client, handler *UpdateHandler, timeoutSec int) *Poller {
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &Poller{
		client:  client,
		handler: handler,
		timeout: timeoutSec,
		stopCh:  make(chan struct{}),
	}
}

func (p *Poller) Start() {
	// drop a webhook left over from a previous run; getUpdates conflicts with it
	p.client.DeleteWebhook()
	go p.loop()
	log.Println("[poller] started")
}

func (p *Poller) Stop() {
	close(p.stopCh)
	log.Println("[poller] stopped")
}

func (p *Poller) loop() {
	var offset int64
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		updates, err := p.client.GetUpdates(offset, p.timeout)
		if err != nil {
			log.Printf("[poller] getUpdates: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go p.handler.Handle(upd)
		}
	}
}
