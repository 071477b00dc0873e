package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"AgriPulse/internal/domain/models"
	drepo "AgriPulse/internal/domain/repository"
	"AgriPulse/pkg/util"

	"github.com/gorilla/websocket"
)

// Client implements a PriceFeed backed by a mandi price WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	commodities    []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	bufferSize     int

	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket price feed client.
func New(apiKey, websocketURL string, commodities []string, reconnectDelay, pingInterval time.Duration, bufferSize int) drepo.PriceFeed {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		commodities:    commodities,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		bufferSize:     bufferSize,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to configured commodities.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, commodity := range c.commodities {
		msg := map[string]string{"type": "subscribe", "commodity": commodity}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", commodity, err)
		}
		log.Printf("feed: subscribed %s", commodity)
	}
	return nil
}

type feedPrice struct {
	Commodity  string  `json:"commodity"`
	Region     string  `json:"region"`
	Market     string  `json:"market"`
	Date       string  `json:"date"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	ModalPrice float64 `json:"modal_price"`
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedPrice `json:"data"`
}

// Read streams PricePoint events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PricePoint, <-chan error) {
	points := make(chan *models.PricePoint, c.bufferSize)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(points)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-price frames
					continue
				}
				if m.Type != "prices" {
					continue
				}
				for _, d := range m.Data {
					date, ok := util.ParseTime(d.Date)
					if !ok {
						continue
					}
					point := &models.PricePoint{
						Commodity:  d.Commodity,
						Region:     d.Region,
						Market:     d.Market,
						Date:       date,
						MinPrice:   d.MinPrice,
						MaxPrice:   d.MaxPrice,
						ModalPrice: d.ModalPrice,
					}
					select {
					case points <- point:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return points, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
