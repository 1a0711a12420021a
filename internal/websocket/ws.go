package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/saferoute-app/saferoute-server/internal/config"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"gorm.io/gorm"
)

const bufferSize = 1024

type Message struct {
	Type int
	Data []byte
}

type Writer interface {
	WriteMessage(msg Message)
	Error(msg string)
}

type wsWriter struct {
	writer chan Message
	error  chan string
}

func (w wsWriter) WriteMessage(msg Message) {
	w.writer <- msg
}

func (w wsWriter) Error(msg string) {
	w.error <- msg
}

type Websocket interface {
	OnMessage(ctx context.Context, r *http.Request, w Writer, msg []byte, t int, user *models.User, db *gorm.DB)
	OnConnect(ctx context.Context, r *http.Request, w Writer, user *models.User, db *gorm.DB)
	OnDisconnect(ctx context.Context, r *http.Request, user *models.User, db *gorm.DB)
}

// CreateHandler upgrades an authenticated request and runs the socket's
// read/write loops until the client goes away.
func CreateHandler(ws Websocket, config *config.Config) func(*gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  bufferSize,
		WriteBufferSize: bufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			origin = strings.ToLower(origin)
			if len(config.HTTP.CORSHosts) == 0 {
				return true
			}
			for _, host := range config.HTTP.CORSHosts {
				host = strings.ToLower(host)
				if strings.HasSuffix(host, ":443") && strings.HasPrefix(origin, "https://") {
					host = strings.TrimSuffix(host, ":443")
				}
				if strings.HasSuffix(host, ":80") && strings.HasPrefix(origin, "http://") {
					host = strings.TrimSuffix(host, ":80")
				}
				if strings.Contains(origin, host) {
					return true
				}
			}
			return false
		},
		EnableCompression: true,
	}

	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok {
			slog.Error("Failed to get user from context")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		db, ok := c.MustGet("db").(*gorm.DB)
		if !ok {
			slog.Error("Failed to get db from context")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Failed to set websocket upgrade", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		defer func() {
			ws.OnDisconnect(c, c.Request, user, db)
			_ = conn.Close()
		}()

		handle(c.Request.Context(), conn, ws, c.Request, user, db)
	}
}

func handle(ctx context.Context, conn *websocket.Conn, ws Websocket, r *http.Request, user *models.User, db *gorm.DB) {
	writer := wsWriter{
		writer: make(chan Message, bufferSize),
		error:  make(chan string),
	}
	ws.OnConnect(ctx, r, writer, user, db)

	go func() {
		for {
			t, msg, err := conn.ReadMessage()
			if err != nil {
				writer.Error("read failed")
				break
			}
			switch {
			case t == websocket.PingMessage:
				writer.WriteMessage(Message{
					Type: websocket.PongMessage,
				})
			case strings.EqualFold(string(msg), "ping"):
				writer.WriteMessage(Message{
					Type: websocket.TextMessage,
					Data: []byte("PONG"),
				})
			default:
				ws.OnMessage(ctx, r, writer, msg, t, user, db)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-writer.error:
			return
		case msg := <-writer.writer:
			err := conn.WriteMessage(msg.Type, msg.Data)
			if err != nil {
				return
			}
		}
	}
}
