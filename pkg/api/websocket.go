package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"micrositepilot/pkg/models"
	"micrositepilot/pkg/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketMessage struct {
	Type   string          `json:"type"`
	JobID  string          `json:"job_id,omitempty"`
	Format string          `json:"format,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WebSocketHandler serves live job progress. Clients can submit raw
// audio for generation ("generate"), watch an existing job
// ("watch_job"), or ping.
func (h *Handlers) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var msg WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "generate":
			h.handleGenerate(ctx, conn, &msg)
		case "watch_job":
			go h.monitorJob(ctx, conn, msg.JobID)
		case "ping":
			h.sendMessage(conn, WebSocketMessage{Type: "pong"})
		default:
			h.sendMessage(conn, WebSocketMessage{
				Type:  "error",
				Error: "Unknown message type",
			})
		}
	}
}

func (h *Handlers) handleGenerate(ctx context.Context, conn *websocket.Conn, msg *WebSocketMessage) {
	// Data is JSON-encoded raw bytes (base64 on the wire).
	var audioData []byte
	if err := json.Unmarshal(msg.Data, &audioData); err != nil || len(audioData) == 0 {
		h.sendMessage(conn, WebSocketMessage{
			Type:  "error",
			Error: "Invalid audio data",
		})
		return
	}

	job := models.NewJob(models.BytesSource(audioData, msg.Format), "")

	h.log.WithField("job_id", job.ID).Info("WebSocket generation request received")

	if err := h.pipeline.Submit(job); err != nil {
		h.sendMessage(conn, WebSocketMessage{
			Type:  "error",
			JobID: job.ID,
			Error: err.Error(),
		})
		return
	}

	h.sendMessage(conn, WebSocketMessage{
		Type:   "job_submitted",
		JobID:  job.ID,
		Status: "submitted",
	})

	go h.monitorJob(ctx, conn, job.ID)
}

func (h *Handlers) monitorJob(ctx context.Context, conn *websocket.Conn, jobID string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastStatus := models.JobStatus("")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := h.jobs.GetJob(jobID)
			if err != nil {
				if err != storage.ErrJobNotFound {
					h.sendMessage(conn, WebSocketMessage{
						Type:  "error",
						JobID: jobID,
						Error: err.Error(),
					})
				}
				return
			}

			if job.Status != lastStatus {
				lastStatus = job.Status
				h.sendMessage(conn, WebSocketMessage{
					Type:   "status_update",
					JobID:  jobID,
					Status: string(job.Status),
				})
			}

			if job.Status == models.StatusCompleted {
				h.sendMessage(conn, WebSocketMessage{
					Type:  "processing_complete",
					JobID: jobID,
					Data:  mustMarshal(envelopeFor(job)),
				})
				return
			}

			if job.Status == models.StatusFailed {
				h.sendMessage(conn, WebSocketMessage{
					Type:  "processing_failed",
					JobID: jobID,
					Error: job.Error,
				})
				return
			}
		}
	}
}

func (h *Handlers) sendMessage(conn *websocket.Conn, msg WebSocketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.WithError(err).Debug("Failed to write websocket message")
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
