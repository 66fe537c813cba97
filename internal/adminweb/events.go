package adminweb

import (
	"fmt"
	"net/http"
	"time"
)

// keepAliveInterval SSE 注释行间隔，防止代理断开空闲连接
var keepAliveInterval = 15 * time.Second

// handleEvents 把刷新信号推给浏览器（SSE）：任何一次提交/删除/结算成功后，
// 打开的列表页收到 refresh 事件并重新加载
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.refresh.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case <-ch:
			fmt.Fprintf(w, "event: refresh\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
