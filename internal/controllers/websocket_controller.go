package controllers

import (
	"net/http"
	"slices"

	appwebsocket "ordem-servico/pkg/websocket"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebSocketController отдаёт живую ленту смены статусов экранам мастерской.
// Лента публичная, как и /orders/public/monitor: в ней нет данных клиентов.
type WebSocketController struct {
	hub      *appwebsocket.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

func (c *WebSocketController) ServeMonitor(ctx echo.Context) error {
	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Warn("WebSocket: falha no upgrade da conexão", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, ctx.RealIP())
	if !c.hub.Register(client) {
		c.logger.Debug("WebSocket: hub encerrado, conexão recusada", zap.String("ip", ctx.RealIP()))
		_ = conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()

	c.logger.Debug("WebSocket: monitor conectado", zap.String("ip", ctx.RealIP()))
	return nil
}
